package feature

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
)

// MockTool is the tool name stamped on mocked artefacts.
const MockTool = "mock"

// StableFloat maps seed to a reproducible value in [0,1).
func StableFloat(seed string) float64 {
	sum := sha256.Sum256([]byte(seed))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:4]), 16, 32)
	return float64(n%10_000_000) / 10_000_000.0
}

// MockSimilarity returns the deterministic test-mode similarity feature.
func MockSimilarity(hostID, phageID string) Similarity {
	v := StableFloat("similarity::" + hostID + "::" + phageID)
	return Similarity{
		HostID:     hostID,
		PhageID:    phageID,
		Metric:     "mock_containment",
		Value:      Num(math.Round(v*1e4) / 1e4),
		Provenance: Provenance{Tool: MockTool, Status: StatusMocked},
	}
}

// MockStructural returns the deterministic test-mode structural feature.
func MockStructural(hostID, phageID string) Structural {
	base := StableFloat("structural::" + hostID + "::" + phageID)
	s := Structural{
		HostID:       hostID,
		PhageID:      phageID,
		HitCount:     int(base * 6),
		BestEvalue:   Null(),
		BestBitscore: Null(),
		QcovMean:     Null(),
		TcovMean:     Null(),
		TopTargets:   []Hit{},
		Provenance:   Provenance{Tool: MockTool, Status: StatusMocked},
	}
	if s.HitCount > 0 {
		s.BestEvalue = Num(math.Pow(10, -float64(2+int(base*6))))
		s.BestBitscore = Num(50.0 + 200.0*base)
		s.QcovMean = Num(0.1 + 0.8*base)
		s.TcovMean = Num(0.1 + 0.8*base)
	}
	return s
}

// MockSafety returns the deterministic test-mode safety feature.
func MockSafety(phageID string) Safety {
	base := StableFloat("safety::" + phageID)
	trna := int(base * 2)
	s := Safety{
		PhageID:       phageID,
		VFDBHits:      int(base * 3),
		IntegraseLike: base > 0.6,
		TRNACount:     &trna,
		Flags:         []string{},
		Provenance:    Provenance{Tool: MockTool, Status: StatusMocked},
	}
	if s.VFDBHits > 0 {
		s.Flags = append(s.Flags, FlagVFDBHit)
	}
	if s.IntegraseLike {
		s.Flags = append(s.Flags, FlagPossibleTemperate)
	}
	return s
}

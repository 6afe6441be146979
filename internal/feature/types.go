package feature

// #region status
// Status is the producer-reported state of a feature artefact.
type Status string

const (
	StatusOK          Status = "ok"
	StatusMocked      Status = "mocked"
	StatusUnavailable Status = "unavailable"
	StatusError       Status = "error"
)

// Safety flags emitted by the safety module.
const (
	FlagVFDBHit           = "vfdb_hit"
	FlagPossibleTemperate = "possible_temperate"
)

// #endregion status

// #region provenance
// Provenance is the tool/status block shared by every feature kind.
type Provenance struct {
	Tool        string  `json:"tool"`
	ToolVersion *string `json:"tool_version"`
	Status      Status  `json:"status"`
	Reason      *string `json:"reason"`
}

// #endregion provenance

// #region similarity
// Similarity is one host×phage similarity measurement (e.g. k-mer containment).
type Similarity struct {
	HostID  string `json:"host_id"`
	PhageID string `json:"phage_id"`
	Metric  string `json:"metric"`
	Value   Float  `json:"value"`
	Provenance
}

// #endregion similarity

// #region structural
// Hit is one structural alignment row kept in StructuralFeature.TopTargets.
type Hit struct {
	Query    string `json:"query"`
	Target   string `json:"target"`
	Evalue   Float  `json:"evalue"`
	Bitscore Float  `json:"bitscore"`
	Qcov     Float  `json:"qcov"`
	Tcov     Float  `json:"tcov"`
}

// MaxTopTargets bounds Structural.TopTargets.
const MaxTopTargets = 5

// Structural summarises structural-homology hits for one host×phage pair.
type Structural struct {
	HostID       string `json:"host_id"`
	PhageID      string `json:"phage_id"`
	HitCount     int    `json:"hit_count"`
	BestEvalue   Float  `json:"best_evalue"`
	BestBitscore Float  `json:"best_bitscore"`
	QcovMean     Float  `json:"qcov_mean"`
	TcovMean     Float  `json:"tcov_mean"`
	TopTargets   []Hit  `json:"top_targets"`
	Provenance
}

// #endregion structural

// #region safety
// Safety carries virulence and lysogeny markers for a phage. It is host-independent.
type Safety struct {
	PhageID       string   `json:"phage_id"`
	VFDBHits      int      `json:"vfdb_hits"`
	IntegraseLike bool     `json:"integrase_like"`
	TRNACount     *int     `json:"tRNA_count"`
	Flags         []string `json:"flags"`
	Provenance
}

// HasFlag reports whether flag is present.
func (s Safety) HasFlag(flag string) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// #endregion safety

// #region set
// Set groups the three evidence modules for one candidate.
type Set struct {
	Similarity Evidence[Similarity]
	Structural Evidence[Structural]
	Safety     Evidence[Safety]
}

// Flags returns the safety flags of the set, or nil when safety evidence is absent.
func (s Set) Flags() []string {
	sf, ok := s.Safety.Get()
	if !ok || len(sf.Flags) == 0 {
		return nil
	}
	out := make([]string, len(sf.Flags))
	copy(out, sf.Flags)
	return out
}

// #endregion set

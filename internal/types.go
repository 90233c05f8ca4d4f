package internal

import "strconv"

// FormatScore renders a similarity score with the three decimal places used
// across the CSV outputs and reports.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

type MatchStatus string

const (
	MatchOK        MatchStatus = "ok"
	MatchAmbiguous MatchStatus = "ambiguous"
	MatchUnmatched MatchStatus = "unmatched"
)

type DeputyRecord struct {
	ID   string
	Name string
}

type InitiativeRecord struct {
	ID    string
	Title string
}

type DeputyMatch struct {
	ID     string
	Score  float64
	Status MatchStatus
}

type Candidate struct {
	ID    string
	Score float64
}

type InitiativeMatch struct {
	ID     string
	Score  float64
	Status MatchStatus
	Second *Candidate
}

func (m InitiativeMatch) SecondBest() string {
	if m.Second == nil {
		return ""
	}
	return m.Second.ID + ":" + FormatScore(m.Second.Score)
}

type SessionRow struct {
	ID          int
	UID         string
	ZipFile     string
	XMLFile     string
	Session     string
	Number      string
	Date        string
	Title       string
	Matter      string
	Assent      string
	Present     string
	InFavor     string
	Against     string
	Abstentions string
	NotVoting   string
	Initiative  InitiativeMatch
}

type VoteRow struct {
	SessionID int
	DeputyID  string
	RawName   string
	Group     string
	Vote      string
}

type VoteTotals struct {
	Si  int `json:"si"`
	No  int `json:"no"`
	Abs int `json:"abs"`
	NV  int `json:"nv"`
}

type ParseFailure struct {
	Zip   string
	XML   string
	Error string
}

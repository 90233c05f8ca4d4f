package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jdiegots/congreso-2025/internal"
	"github.com/jdiegots/congreso-2025/internal/catalog"
	"github.com/jdiegots/congreso-2025/internal/config"
	"github.com/jdiegots/congreso-2025/internal/roster"
	"github.com/jdiegots/congreso-2025/internal/util"
)

// initiativeKeyMax caps the diagnostics key length for initiative samples.
const initiativeKeyMax = 300

var sessionHeader = []string{
	"id", "votacion_uid", "zip_file", "xml_file",
	"sesion", "numero", "fecha",
	"titulo_punto", "texto_expediente",
	"asentimiento", "presentes", "a_favor", "en_contra", "abstenciones", "no_votan",
	"iniciativa_id", "iniciativa_match_status", "iniciativa_match_score", "iniciativa_second_best",
}

var voteHeader = []string{"votacion_id", "diputado_id", "diputado_xml", "grupo", "voto"}

type BuildService struct {
	cfg         config.Config
	deputies    *roster.Index
	initiatives *catalog.Matcher
}

func NewBuildService(cfg config.Config, deputies []internal.DeputyRecord, initiatives []internal.InitiativeRecord) *BuildService {
	return &BuildService{
		cfg:         cfg,
		deputies:    roster.BuildIndex(deputies),
		initiatives: catalog.NewMatcher(cfg, initiatives),
	}
}

type BuildResult struct {
	Summary     Summary
	Diagnostics *Diagnostics
}

func (s *BuildService) Run() (*BuildResult, error) {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cfg.ReportsDir(), 0o755); err != nil {
		return nil, err
	}

	archives, err := ListArchives(s.cfg.ZipsDir)
	if err != nil {
		return nil, err
	}

	sessionsPath := filepath.Join(s.cfg.OutputDir, "votaciones.csv")
	sessionsFile, err := os.Create(sessionsPath)
	if err != nil {
		return nil, err
	}
	sessions := csv.NewWriter(sessionsFile)
	if err := sessions.Write(sessionHeader); err != nil {
		_ = sessionsFile.Close()
		return nil, err
	}

	votes, err := NewChunkWriter(s.cfg.OutputDir, "votos", voteHeader, s.cfg.VoteChunkSize)
	if err != nil {
		_ = sessionsFile.Close()
		return nil, err
	}

	diag := NewDiagnostics()
	stats := map[string]*internal.VoteTotals{}
	sessionID := 0
	totalVotes := 0

	for _, zipPath := range archives {
		zipBase := filepath.Base(zipPath)
		err := EachXMLMember(zipPath, func(member string, data []byte) error {
			doc, perr := ParseDocument(data)
			if perr != nil {
				diag.Failure(zipBase, member, perr.Error())
				return nil
			}

			sessionID++
			row := s.sessionRow(sessionID, zipBase, member, doc)

			key := truncateRunes(util.CleanTitle(doc.Matter), initiativeKeyMax)
			diag.InitiativeOutcome(row.Initiative.Status, key, InitiativeSample{
				Zip:        zipBase,
				XML:        member,
				Date:       row.Date,
				Session:    row.Session,
				Number:     row.Number,
				Title:      row.Title,
				Matter:     row.Matter,
				BestScore:  internal.FormatScore(row.Initiative.Score),
				SecondBest: row.Initiative.SecondBest(),
			})

			if err := sessions.Write(sessionRecord(row)); err != nil {
				return err
			}

			for _, v := range doc.Votes {
				match := s.deputies.Match(v.RawName)
				diag.DeputyOutcome(match.Status, util.CanonicalizeName(v.RawName))
				if match.ID != "" {
					tallyVote(statsFor(stats, match.ID), v.Vote)
				}
				record := []string{
					strconv.Itoa(sessionID), match.ID, v.RawName, v.Group, v.Vote,
				}
				if err := votes.Write(record); err != nil {
					return err
				}
				totalVotes++
			}
			return nil
		})
		if err != nil {
			_ = sessionsFile.Close()
			_ = votes.Close()
			return nil, err
		}
	}

	sessions.Flush()
	if err := sessions.Error(); err != nil {
		_ = sessionsFile.Close()
		_ = votes.Close()
		return nil, err
	}
	if err := sessionsFile.Close(); err != nil {
		return nil, err
	}
	if err := votes.Close(); err != nil {
		return nil, err
	}

	if err := WriteReports(s.cfg.ReportsDir(), diag); err != nil {
		return nil, err
	}
	if err := WriteStats(filepath.Join(s.cfg.OutputDir, "stats_diputados.json"), stats); err != nil {
		return nil, err
	}
	if err := ExportDiagnosticsXLSX(diag, filepath.Join(s.cfg.ReportsDir(), "diagnostics.xlsx")); err != nil {
		return nil, err
	}

	summary := Summary{
		SessionsCSV:          sessionsPath,
		VoteChunks:           votes.Names(),
		ReportsDir:           s.cfg.ReportsDir(),
		Sessions:             sessionID,
		Votes:                totalVotes,
		UnmatchedDeputies:    len(diag.UnmatchedDeputies),
		AmbiguousDeputies:    len(diag.AmbiguousDeputies),
		UnmatchedInitiatives: len(diag.UnmatchedInitiatives()),
		AmbiguousInitiatives: len(diag.AmbiguousInitiatives()),
		ParseFailures:        len(diag.ParseFailures),
	}
	if err := WriteSummary(filepath.Join(s.cfg.OutputDir, "summary.json"), summary); err != nil {
		return nil, err
	}

	return &BuildResult{Summary: summary, Diagnostics: diag}, nil
}

func (s *BuildService) sessionRow(id int, zipBase, member string, doc *BallotDocument) internal.SessionRow {
	date := ISODate(doc.DateRaw)
	uid := fmt.Sprintf("%s__%s__S%s_V%s_%s", zipBase, member, doc.Session, doc.Number, date)
	uid = strings.NewReplacer("/", "_", "\\", "_").Replace(uid)

	return internal.SessionRow{
		ID:          id,
		UID:         uid,
		ZipFile:     zipBase,
		XMLFile:     member,
		Session:     doc.Session,
		Number:      doc.Number,
		Date:        date,
		Title:       doc.Title,
		Matter:      doc.Matter,
		Assent:      doc.Totals.Assent,
		Present:     doc.Totals.Present,
		InFavor:     doc.Totals.InFavor,
		Against:     doc.Totals.Against,
		Abstentions: doc.Totals.Abstentions,
		NotVoting:   doc.Totals.NotVoting,
		Initiative:  s.initiatives.Match(doc.Matter),
	}
}

func sessionRecord(r internal.SessionRow) []string {
	return []string{
		strconv.Itoa(r.ID), r.UID, r.ZipFile, r.XMLFile,
		r.Session, r.Number, r.Date,
		r.Title, r.Matter,
		r.Assent, r.Present, r.InFavor, r.Against, r.Abstentions, r.NotVoting,
		r.Initiative.ID, string(r.Initiative.Status),
		internal.FormatScore(r.Initiative.Score), r.Initiative.SecondBest(),
	}
}

func statsFor(stats map[string]*internal.VoteTotals, deputyID string) *internal.VoteTotals {
	t, ok := stats[deputyID]
	if !ok {
		t = &internal.VoteTotals{}
		stats[deputyID] = t
	}
	return t
}

func tallyVote(t *internal.VoteTotals, vote string) {
	switch strings.ToLower(strings.TrimSpace(vote)) {
	case "sí", "si":
		t.Si++
	case "no":
		t.No++
	case "abstención", "abstencion":
		t.Abs++
	default:
		t.NV++
	}
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

package pipeline

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"
)

type ballotXML struct {
	Informacion *infoXML   `xml:"Informacion"`
	Totales     *totalsXML `xml:"Totales"`
	Votaciones  *votesXML  `xml:"Votaciones"`
}

type infoXML struct {
	Sesion          string `xml:"Sesion"`
	NumeroVotacion  string `xml:"NumeroVotacion"`
	Fecha           string `xml:"Fecha"`
	Titulo          string `xml:"Titulo"`
	TextoExpediente string `xml:"TextoExpediente"`
}

type totalsXML struct {
	Asentimiento string `xml:"Asentimiento"`
	Presentes    string `xml:"Presentes"`
	AFavor       string `xml:"AFavor"`
	EnContra     string `xml:"EnContra"`
	Abstenciones string `xml:"Abstenciones"`
	NoVotan      string `xml:"NoVotan"`
}

type votesXML struct {
	Votos []voteXML `xml:"Votacion"`
}

type voteXML struct {
	Asiento  string `xml:"Asiento"`
	Diputado string `xml:"Diputado"`
	Grupo    string `xml:"Grupo"`
	Voto     string `xml:"Voto"`
}

type VoteEntry struct {
	RawName string
	Group   string
	Vote    string
}

// Totals are the aggregate tallies, kept as raw strings; a missing Totales
// block leaves them empty.
type Totals struct {
	Assent      string
	Present     string
	InFavor     string
	Against     string
	Abstentions string
	NotVoting   string
}

type BallotDocument struct {
	Session string
	Number  string
	DateRaw string
	Title   string
	Matter  string
	Totals  Totals
	Votes   []VoteEntry
}

var errMissingBlocks = errors.New("unexpected structure: missing <Informacion> or <Votaciones>")

func ParseDocument(data []byte) (*BallotDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var raw ballotXML
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("xml parse: %w", err)
	}
	if raw.Informacion == nil || raw.Votaciones == nil {
		return nil, errMissingBlocks
	}

	doc := &BallotDocument{
		Session: strings.TrimSpace(raw.Informacion.Sesion),
		Number:  strings.TrimSpace(raw.Informacion.NumeroVotacion),
		DateRaw: strings.TrimSpace(raw.Informacion.Fecha),
		Title:   strings.TrimSpace(raw.Informacion.Titulo),
		Matter:  strings.TrimSpace(raw.Informacion.TextoExpediente),
	}
	if raw.Totales != nil {
		doc.Totals = Totals{
			Assent:      strings.TrimSpace(raw.Totales.Asentimiento),
			Present:     strings.TrimSpace(raw.Totales.Presentes),
			InFavor:     strings.TrimSpace(raw.Totales.AFavor),
			Against:     strings.TrimSpace(raw.Totales.EnContra),
			Abstentions: strings.TrimSpace(raw.Totales.Abstenciones),
			NotVoting:   strings.TrimSpace(raw.Totales.NoVotan),
		}
	}
	doc.Votes = make([]VoteEntry, 0, len(raw.Votaciones.Votos))
	for _, v := range raw.Votaciones.Votos {
		doc.Votes = append(doc.Votes, VoteEntry{
			RawName: strings.TrimSpace(v.Diputado),
			Group:   strings.TrimSpace(v.Grupo),
			Vote:    strings.TrimSpace(v.Voto),
		})
	}
	return doc, nil
}

// ISODate converts dd/mm/yyyy to yyyy-mm-dd, falling back to the raw string
// when it does not parse.
func ISODate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

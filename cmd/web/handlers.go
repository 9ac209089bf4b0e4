package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"proteinstruct/internal/chart"
	"proteinstruct/internal/protein"
	"proteinstruct/internal/session"
	"proteinstruct/internal/swissmodel"
	"proteinstruct/internal/uniprot"
)

const (
	sessionCookie = "psid"
	sessionKey    = "session"

	minMaxSeq = 10
	maxMaxSeq = 500
)

// page is the data rendered by base.html and its fragments.
type page struct {
	Species  []string
	Selected string
	MaxSeq   int
	Proteins []protein.Record
	Summary  protein.Summary
	Loaded   bool
	Message  string
	Level    string // success, warning or error
}

// detail is rendered by detail.html.
type detail struct {
	Protein     protein.Record
	Composition []compositionEntry
}

type compositionEntry struct {
	Residue string  `json:"residue"`
	Percent float64 `json:"percent"`
}

// structureView is rendered by structure.html.
type structureView struct {
	Accession string
	Structure *swissmodel.Structure
	Message   string
	Level     string
}

func (s *server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(sessionCookie)
		sess, created := s.sessions.GetOrCreate(raw)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sess.ID.String(), 0, "/", "", false, true)
			s.logger.Debug("session created", "id", sess.ID)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func isFragment(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// clampMaxSeq parses the max sequences field, falling back to def and
// bounding the result to the range offered by the form.
func clampMaxSeq(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = def
	}
	if n < minMaxSeq {
		return minMaxSeq
	}
	if n > maxMaxSeq {
		return maxMaxSeq
	}
	return n
}

func (s *server) pageFor(sess *session.Session) page {
	snap := sess.Snapshot()
	p := page{
		Species:  uniprot.SpeciesNames(),
		Selected: snap.Species,
		MaxSeq:   snap.MaxCount,
		Proteins: snap.Proteins,
		Summary:  protein.Summarize(snap.Proteins),
		Loaded:   sess.Loaded(),
	}
	if p.Selected == "" {
		p.Selected = p.Species[0]
	}
	if p.MaxSeq == 0 {
		p.MaxSeq = clampMaxSeq("", s.cfg.DefaultMaxSeq)
	}
	return p
}

func (s *server) indexHandler(c *gin.Context) {
	p := s.pageFor(currentSession(c))
	if !p.Loaded {
		p.Message, p.Level = "Please fetch data first.", "warning"
	}
	c.HTML(http.StatusOK, "base.html", p)
}

// fetchHandler downloads the selected proteome and replaces the session's
// collection. On failure the previous collection is kept and the error is
// shown to the user.
func (s *server) fetchHandler(c *gin.Context) {
	sess := currentSession(c)
	raw := c.PostForm("species")
	maxSeq := clampMaxSeq(c.PostForm("max_seq"), s.cfg.DefaultMaxSeq)

	p := s.pageFor(sess)
	p.MaxSeq = maxSeq
	sp, err := uniprot.ParseSpecies(raw)
	if err != nil {
		p.Message, p.Level = "Unknown species: "+raw, "error"
		s.renderOverview(c, http.StatusBadRequest, p)
		return
	}
	speciesName := sp.Name
	p.Selected = speciesName

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.FetchTimeout())
	defer cancel()
	proteins, err := s.fetcher.Fetch(ctx, speciesName, maxSeq)

	status := http.StatusOK
	switch {
	case err != nil:
		s.logger.Error("fetch failed", "species", speciesName, "max", maxSeq, "err", err)
		status = http.StatusBadGateway
		p.Message, p.Level = "Error fetching data: "+err.Error(), "error"
	case len(proteins) == 0:
		p.Message, p.Level = "No data returned. Check internet connection or UniProt availability.", "error"
	default:
		sess.Replace(speciesName, maxSeq, proteins)
		p = s.pageFor(sess)
		p.Message, p.Level = "Loaded "+strconv.Itoa(len(proteins))+" proteins for "+speciesName+".", "success"
		s.logger.Info("session loaded", "session", sess.ID, "species", speciesName, "proteins", len(proteins))
	}
	s.renderOverview(c, status, p)
}

// renderOverview answers HTMX requests with the overview fragment and
// everything else with the full page.
func (s *server) renderOverview(c *gin.Context, status int, p page) {
	if isFragment(c.Request) {
		c.HTML(status, "overview.html", p)
		return
	}
	c.HTML(status, "base.html", p)
}

func compositionEntries(r protein.Record) []compositionEntry {
	comp := r.Composition()
	out := make([]compositionEntry, len(comp))
	for i, label := range comp.Labels() {
		out[i] = compositionEntry{Residue: label, Percent: comp[i]}
	}
	return out
}

func (s *server) lookup(c *gin.Context) (protein.Record, bool) {
	acc := c.Param("acc")
	r, ok := currentSession(c).Protein(acc)
	if !ok {
		c.String(http.StatusNotFound, "protein %s not loaded; fetch data first", acc)
	}
	return r, ok
}

func (s *server) proteinHandler(c *gin.Context) {
	r, ok := s.lookup(c)
	if !ok {
		return
	}
	d := detail{Protein: r, Composition: compositionEntries(r)}
	if isFragment(c.Request) {
		c.HTML(http.StatusOK, "detail.html", d)
		return
	}
	c.HTML(http.StatusOK, "protein_page.html", d)
}

func (s *server) compositionHandler(c *gin.Context) {
	r, ok := s.lookup(c)
	if !ok {
		return
	}
	svg, err := chart.CompositionSVG(chart.Title(r), r.Composition())
	if err != nil {
		s.logger.Error("composition chart failed", "accession", r.Accession, "err", err)
		c.String(http.StatusInternalServerError, "failed to render chart")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (s *server) loadStructure(c *gin.Context) (*swissmodel.Structure, structureView) {
	acc := strings.TrimSpace(c.Param("acc"))
	v := structureView{Accession: acc}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.StructureTimeout())
	defer cancel()
	st, err := s.structures.LoadStructure(ctx, acc)
	switch {
	case errors.Is(err, swissmodel.ErrNoStructure):
		v.Message, v.Level = "No 3D structure available for this protein.", "warning"
	case err != nil:
		s.logger.Error("structure download failed", "accession", acc, "err", err)
		v.Message, v.Level = "Error loading structure: "+err.Error(), "error"
	default:
		v.Structure = st
	}
	return st, v
}

// structureHandler renders the 3D viewer; a missing model is a normal
// result shown as a warning.
func (s *server) structureHandler(c *gin.Context) {
	_, v := s.loadStructure(c)
	c.HTML(http.StatusOK, "structure.html", v)
}

func (s *server) structurePDBHandler(c *gin.Context) {
	st, v := s.loadStructure(c)
	if st == nil {
		c.String(http.StatusNotFound, "%s", v.Message)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+st.Accession+`.pdb"`)
	c.Data(http.StatusOK, "chemical/x-pdb", []byte(st.PDB))
}

func (s *server) apiSpeciesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, uniprot.AllSpecies())
}

func (s *server) apiProteinsHandler(c *gin.Context) {
	snap := currentSession(c).Snapshot()
	proteins := snap.Proteins
	if proteins == nil {
		proteins = []protein.Record{}
	}
	c.JSON(http.StatusOK, gin.H{
		"species":  snap.Species,
		"max_seq":  snap.MaxCount,
		"summary":  protein.Summarize(proteins),
		"proteins": proteins,
	})
}

func (s *server) apiProteinHandler(c *gin.Context) {
	r, ok := currentSession(c).Protein(c.Param("acc"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "protein not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"protein":     r,
		"composition": compositionEntries(r),
	})
}

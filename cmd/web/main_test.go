package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/pgzip"

	"proteinstruct/internal/config"
)

const testFasta = `>sp|P69905|HBA_HUMAN Hemoglobin subunit alpha OS=Homo sapiens OX=9606 GN=HBA1 PE=1 SV=2
MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHFDLSHGSAQVKGHG
>sp|P01308|INS_HUMAN Short OS=Homo sapiens OX=9606 GN=INS PE=1 SV=1
MALWMRLLPL
>sp|P68871|HBB_HUMAN Hemoglobin subunit beta OS=Homo sapiens OX=9606 GN=HBB PE=1 SV=2
MVHLTPEEKSAVTALWGKVNVDEVGGEALGRLLVVYPWTQRFFESFGDLSTPDAVMGNPKVKAHGKK
`

const testModel = "ATOM      1  N   MET A   1       1.000   2.000   3.000  1.00 50.00           N\nEND\n"

type testEnv struct {
	handler http.Handler
	failing atomic.Bool
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{}

	uni := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env.failing.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		zw := pgzip.NewWriter(w)
		fmt.Fprint(zw, testFasta)
		zw.Close()
	}))
	t.Cleanup(uni.Close)
	sm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/P69905.pdb") {
			fmt.Fprint(w, testModel)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(sm.Close)

	cfg := config.Default()
	cfg.UniProtBaseURL = uni.URL
	cfg.SwissModelBaseURL = sm.URL
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl, err := loadTemplates(embeddedTemplates, "templates", templateFuncs(cfg))
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	srv, err := newServer(cfg, log.New(io.Discard), tmpl)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	env.handler = srv.routes()
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) fetch(t *testing.T, species, maxSeq string) *httptest.ResponseRecorder {
	form := url.Values{"species": {species}, "max_seq": {maxSeq}}
	req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func TestIndexPromptsForFetch(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.cookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Please fetch data first.") || !strings.Contains(body, "Fruit Fly") {
		t.Fatalf("unexpected index body:\n%s", body)
	}
}

func TestFetchPopulatesSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.fetch(t, "Human", "100")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Loaded 2 proteins for Human.", "63.5 aa", "67 aa", "P68871 | Hemoglobin subunit beta | 67 aa"} {
		if !strings.Contains(body, want) {
			t.Fatalf("fetch page missing %q:\n%s", want, body)
		}
	}

	rec = env.get(t, "/api/proteins")
	var got struct {
		Species  string `json:"species"`
		Proteins []struct {
			Accession string `json:"uniprot_id"`
		} `json:"proteins"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Species != "Human" || len(got.Proteins) != 2 || got.Proteins[1].Accession != "P68871" {
		t.Fatalf("unexpected api payload %+v", got)
	}
}

func TestFetchFragment(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"species": {"Human"}, "max_seq": {"50"}}
	req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := env.do(t, req)
	body := rec.Body.String()
	if strings.Contains(body, "<html") || !strings.Contains(body, `id="overview"`) {
		t.Fatalf("expected overview fragment, got:\n%s", body)
	}
}

func TestFetchFailureKeepsPreviousList(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.fetch(t, "Human", "100"); rec.Code != http.StatusOK {
		t.Fatalf("initial fetch failed: %d", rec.Code)
	}
	env.failing.Store(true)
	rec := env.fetch(t, "Human", "20")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error fetching data:") {
		t.Fatalf("expected error message:\n%s", rec.Body.String())
	}
	if rec := env.get(t, "/proteins/P69905"); rec.Code != http.StatusOK {
		t.Fatalf("previous list lost, got %d", rec.Code)
	}
}

func TestFetchUnknownSpecies(t *testing.T) {
	env := newTestEnv(t)
	rec := env.fetch(t, "Unicorn", "100")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProteinDetailAndChart(t *testing.T) {
	env := newTestEnv(t)
	env.fetch(t, "Human", "100")

	rec := env.get(t, "/proteins/P68871")
	body := rec.Body.String()
	for _, want := range []string{"Hemoglobin subunit beta", "Homo sapiens", "HBB", "67 amino acids", "/proteins/P68871/composition.svg"} {
		if !strings.Contains(body, want) {
			t.Fatalf("detail missing %q:\n%s", want, body)
		}
	}

	rec = env.get(t, "/proteins/P68871/composition.svg")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected chart response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("chart body is not svg")
	}

	if rec := env.get(t, "/proteins/P01308"); rec.Code != http.StatusNotFound {
		t.Fatalf("short protein should be filtered, got %d", rec.Code)
	}
}

func TestAPIProteinComposition(t *testing.T) {
	env := newTestEnv(t)
	env.fetch(t, "Human", "100")

	rec := env.get(t, "/api/proteins/P69905")
	var got struct {
		Composition []compositionEntry `json:"composition"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Composition) != 20 || got.Composition[0].Residue != "A" {
		t.Fatalf("unexpected composition %+v", got.Composition)
	}
	sum := 0.0
	for _, e := range got.Composition {
		sum += e.Percent
	}
	if sum < 99.99 || sum > 100.01 {
		t.Fatalf("composition sums to %f", sum)
	}
}

func TestStructureViewer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/structure/P69905")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Atoms: 1") {
		t.Fatalf("unexpected viewer page %d:\n%s", rec.Code, rec.Body.String())
	}

	rec = env.get(t, "/structure/P00000")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No 3D structure available for this protein.") {
		t.Fatalf("expected warning page, got %d:\n%s", rec.Code, rec.Body.String())
	}

	rec = env.get(t, "/structure/P69905/pdb")
	if rec.Code != http.StatusOK || rec.Body.String() != testModel {
		t.Fatalf("unexpected pdb download %d %q", rec.Code, rec.Body.String())
	}
	if rec := env.get(t, "/structure/P00000/pdb"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing model, got %d", rec.Code)
	}
}

func TestClampMaxSeq(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 100},
		{"abc", 100},
		{"5", 10},
		{"250", 250},
		{"9000", 500},
	}
	for _, tc := range cases {
		if got := clampMaxSeq(tc.raw, 100); got != tc.want {
			t.Fatalf("clampMaxSeq(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestFetchStoresCanonicalSpeciesName(t *testing.T) {
	env := newTestEnv(t)
	rec := env.fetch(t, "fruit fly", "100")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<option value="Fruit Fly" selected>`) {
		t.Fatalf("species select lost the choice:\n%s", rec.Body.String())
	}
	rec = env.get(t, "/api/proteins")
	var got struct {
		Species string `json:"species"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Species != "Fruit Fly" {
		t.Fatalf("expected canonical species name, got %q", got.Species)
	}
}

func TestStructurePDBErrorKeepsPercentSigns(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	env := newTestEnv(t, func(cfg *config.Config) { cfg.SwissModelBaseURL = downURL })

	rec := env.get(t, "/structure/P%5E1/pdb")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Error loading structure:") || !strings.Contains(body, "P%5E1.pdb") {
		t.Fatalf("error text mangled: %q", body)
	}
	if strings.Contains(body, "%!") {
		t.Fatalf("message was used as a format string: %q", body)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"proteinstruct/internal/config"
	"proteinstruct/internal/fasta"
	"proteinstruct/internal/logging"
	"proteinstruct/internal/protein"
	"proteinstruct/internal/swissmodel"
	"proteinstruct/internal/uniprot"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	barColor       = lipgloss.Color("#007ACC")
	errorColor     = lipgloss.Color("#EF4444")
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle   = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	barStyle     = lipgloss.NewStyle().Foreground(barColor)
	warnStyle    = lipgloss.NewStyle().Foreground(accentColor)
	errStyle     = lipgloss.NewStyle().Foreground(errorColor).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)
)

// proteomeFetcher is satisfied by *uniprot.Fetcher.
type proteomeFetcher interface {
	Fetch(ctx context.Context, speciesName string, maxCount int) ([]protein.Record, error)
	Forget(speciesName string, maxCount int)
}

// structureLoader is satisfied by *swissmodel.Client.
type structureLoader interface {
	LoadStructure(ctx context.Context, accession string) (*swissmodel.Structure, error)
}

type listItem struct {
	record protein.Record
}

func (i listItem) FilterValue() string {
	return i.record.Accession + " " + i.record.DisplayName + " " + i.record.GeneName
}

func (i listItem) Title() string {
	return i.record.Accession
}

func (i listItem) Description() string {
	return fmt.Sprintf("%s    %d aa", i.record.DisplayName, i.record.Length)
}

type mode int

const (
	modeComposition mode = iota
	modeSequence
	modeStructure
)

func (m mode) String() string {
	switch m {
	case modeComposition:
		return "Composition"
	case modeSequence:
		return "Sequence"
	case modeStructure:
		return "3D Structure"
	default:
		return "Unknown"
	}
}

type proteinsMsg struct {
	species  string
	maxCount int
	records  []protein.Record
	err      error
}

type structureMsg struct {
	accession string
	structure *swissmodel.Structure
	err       error
}

type structureState struct {
	loading   bool
	structure *swissmodel.Structure
	err       error
}

type model struct {
	list        list.Model
	spinner     spinner.Model
	fetcher     proteomeFetcher
	structures  structureLoader
	species     string
	maxCount    int
	wrapWidth   int
	timeout     time.Duration
	records     []protein.Record
	models      map[string]structureState
	currentMode mode
	loading     bool
	status      string
	statusErr   bool
	showHelp    bool
	width       int
	height      int

	selectedIndex int
}

func newModel(f proteomeFetcher, s structureLoader, species string, maxCount, wrapWidth int, timeout time.Duration) model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Proteins"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	if wrapWidth <= 0 {
		wrapWidth = fasta.DefaultWrapWidth
	}
	return model{
		list:        l,
		spinner:     sp,
		fetcher:     f,
		structures:  s,
		species:     species,
		maxCount:    maxCount,
		wrapWidth:   wrapWidth,
		timeout:     timeout,
		models:      map[string]structureState{},
		currentMode: modeComposition,
		loading:     true,
	}
}

func (m model) fetchCmd() tea.Cmd {
	f, species, maxCount, timeout := m.fetcher, m.species, m.maxCount, m.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		recs, err := f.Fetch(ctx, species, maxCount)
		return proteinsMsg{species: species, maxCount: maxCount, records: recs, err: err}
	}
}

func (m model) structureCmd(accession string) tea.Cmd {
	s, timeout := m.structures, m.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		st, err := s.LoadStructure(ctx, accession)
		return structureMsg{accession: accession, structure: st, err: err}
	}
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

// nextSpecies returns the species after the current one in the fixed table.
func (m model) nextSpecies() string {
	names := uniprot.SpeciesNames()
	for i, n := range names {
		if strings.EqualFold(n, m.species) {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) selected() (protein.Record, bool) {
	item, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return protein.Record{}, false
	}
	return item.record, true
}

// ensureStructure starts a download for the selected protein when the
// structure view is active and no result is known yet.
func (m model) ensureStructure() (model, tea.Cmd) {
	if m.currentMode != modeStructure || m.structures == nil {
		return m, nil
	}
	rec, ok := m.selected()
	if !ok {
		return m, nil
	}
	if _, known := m.models[rec.Accession]; known {
		return m, nil
	}
	m.models[rec.Accession] = structureState{loading: true}
	return m, m.structureCmd(rec.Accession)
}

func (m model) setRecords(recs []protein.Record) model {
	items := make([]list.Item, len(recs))
	for i, r := range recs {
		items[i] = listItem{record: r}
	}
	m.records = recs
	m.list.SetItems(items)
	m.list.Select(0)
	m.selectedIndex = 0
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// left panel takes 1/3 of the width
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case proteinsMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			// keep whatever was loaded before
			m.status, m.statusErr = "Error fetching data: "+msg.err.Error(), true
		case len(msg.records) == 0:
			m.status, m.statusErr = "No data returned. Check internet connection or UniProt availability.", true
		default:
			m.species, m.maxCount = msg.species, msg.maxCount
			m = m.setRecords(msg.records)
			m.status, m.statusErr = fmt.Sprintf("Loaded %d proteins for %s.", len(msg.records), msg.species), false
		}
		return m.ensureStructure()

	case structureMsg:
		m.models[msg.accession] = structureState{structure: msg.structure, err: msg.err}
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab", "m":
			m = m.cycleMode()
			return m.ensureStructure()

		case "1":
			m.currentMode = modeComposition
			return m, nil

		case "2":
			m.currentMode = modeSequence
			return m, nil

		case "3":
			m.currentMode = modeStructure
			return m.ensureStructure()

		case "enter":
			if m.currentMode == modeStructure {
				if rec, ok := m.selected(); ok {
					if st, known := m.models[rec.Accession]; known && st.err != nil && !errors.Is(st.err, swissmodel.ErrNoStructure) {
						delete(m.models, rec.Accession)
					}
				}
				return m.ensureStructure()
			}

		case "r":
			if m.loading {
				return m, nil
			}
			// a memoized failure would otherwise come straight back
			m.fetcher.Forget(m.species, m.maxCount)
			m.loading = true
			m.status = ""
			return m, tea.Batch(m.spinner.Tick, m.fetchCmd())

		case "s":
			if m.loading {
				return m, nil
			}
			m.species = m.nextSpecies()
			m.loading = true
			m.status = ""
			return m, tea.Batch(m.spinner.Tick, m.fetchCmd())
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpModal()
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(),
		m.renderRightPanel(),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatusBar(),
	)
}

func (m model) renderLeftPanel() string {
	return containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3
	var content string
	switch rec, ok := m.selected(); {
	case m.loading && len(m.records) == 0:
		content = m.spinner.View() + " Fetching data from UniProt..."
	case len(m.records) == 0:
		content = warnStyle.Render("Please fetch data first.")
	case !ok:
		content = "No protein selected"
	default:
		content = strings.Join(m.buildRightLines(rec), "\n")
	}
	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(content)
}

// buildRightLines renders the detail panel for rec in the current mode.
func (m model) buildRightLines(rec protein.Record) []string {
	lines := []string{
		titleStyle.Render(rec.DisplayName),
		labelStyle.Render("UniProt ID: ") + valueStyle.Render(rec.Accession),
		labelStyle.Render("Organism:   ") + rec.Organism,
		labelStyle.Render("Gene:       ") + rec.GeneName,
		labelStyle.Render("Length:     ") + fmt.Sprintf("%d amino acids", rec.Length),
		"",
	}
	switch m.currentMode {
	case modeComposition:
		lines = append(lines, sectionStyle.Render("Amino Acid Composition"), "")
		lines = append(lines, compositionLines(rec.Composition(), m.barWidth())...)
	case modeSequence:
		lines = append(lines, sectionStyle.Render("Sequence"), "")
		lines = append(lines, strings.Split(fasta.Wrap(rec.Sequence, m.sequenceWidth()), "\n")...)
	case modeStructure:
		lines = append(lines, sectionStyle.Render("3D Structure"), "")
		lines = append(lines, m.structureLines(rec.Accession)...)
	}
	return lines
}

func (m model) barWidth() int {
	w := m.width*2/3 - 20
	if w < 10 {
		return 10
	}
	return w
}

func (m model) sequenceWidth() int {
	w := m.width*2/3 - 6
	if w <= 0 || w > m.wrapWidth {
		return m.wrapWidth
	}
	return w
}

// compositionLines draws one bar per residue scaled to the largest share.
func compositionLines(c protein.Composition, width int) []string {
	top := 0.0
	for _, v := range c {
		if v > top {
			top = v
		}
	}
	lines := make([]string, 0, len(c))
	for i, label := range c.Labels() {
		n := 0
		if top > 0 {
			n = int(c[i]/top*float64(width) + 0.5)
		}
		lines = append(lines, fmt.Sprintf("%s %5.1f%% %s", label, c[i], barStyle.Render(strings.Repeat("█", n))))
	}
	return lines
}

func (m model) structureLines(accession string) []string {
	st, known := m.models[accession]
	switch {
	case !known:
		return []string{labelStyle.Render("Press enter to load the SWISS-MODEL structure.")}
	case st.loading:
		return []string{m.spinner.View() + " Loading structure..."}
	case errors.Is(st.err, swissmodel.ErrNoStructure):
		return []string{warnStyle.Render("No 3D structure available for this protein.")}
	case st.err != nil:
		return []string{errStyle.Render("Error loading structure: " + st.err.Error()), labelStyle.Render("Press enter to retry.")}
	}
	s := st.structure
	lines := []string{
		labelStyle.Render("Atoms:    ") + fmt.Sprintf("%d", s.Atoms),
		labelStyle.Render("Residues: ") + fmt.Sprintf("%d", s.Residues),
		labelStyle.Render("Chains:   ") + strings.Join(s.Chains, ", "),
	}
	for _, id := range s.Chains {
		lines = append(lines, "", sectionStyle.Render("Chain "+id))
		lines = append(lines, strings.Split(fasta.Wrap(s.Sequences[id], m.sequenceWidth()), "\n")...)
	}
	return lines
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%s  %d/%d proteins", m.species, m.selectedIndex+1, len(m.records))
	if len(m.records) == 0 {
		leftInfo = fmt.Sprintf("%s  0 proteins", m.species)
	}
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode)
	if m.loading {
		centerInfo = m.spinner.View() + " fetching"
	} else if m.status != "" {
		centerInfo = m.status
		if m.statusErr {
			centerInfo = errStyle.Render(m.status)
		}
	}
	rightInfo := "Press 'h' for help • 'q' to quit"

	spacing := m.width - lipgloss.Width(leftInfo) - lipgloss.Width(centerInfo) - lipgloss.Width(rightInfo) - 6
	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		statusContent = leftInfo + strings.Repeat(" ", leftSpacing) + centerInfo + strings.Repeat(" ", spacing-leftSpacing) + rightInfo
	} else {
		// narrow terminals
		statusContent = leftInfo + " | " + centerInfo
	}
	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	summary := protein.Summarize(m.records)
	helpContent := `Protein Structure Explorer - Help

Navigation:
  ↑/↓, j/k     Navigate list
  /            Filter proteins

View Modes:
  1            Amino acid composition
  2            Sequence
  3            3D structure summary
  tab, m       Next mode
  enter        Load or retry structure

Data:
  r            Fetch again, bypassing the cache
  s            Next species and fetch

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Species: ` + m.species + `
Total Proteins: ` + fmt.Sprintf("%d", summary.Total) + `
Average Length: ` + fmt.Sprintf("%.1f aa", summary.AverageLength) + `
Longest Protein: ` + fmt.Sprintf("%d aa", summary.MaxLength) + `
`

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func main() {
	configPath := flag.String("config", "", "path to config.json (optional)")
	species := flag.String("species", "Human", "species: "+strings.Join(uniprot.SpeciesNames(), ", "))
	maxSeq := flag.Int("max", 0, "maximum number of proteins (defaults to config)")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *maxSeq <= 0 {
		*maxSeq = cfg.DefaultMaxSeq
	}
	if _, err := uniprot.ParseSpecies(*species); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %q\n", err, *species)
		os.Exit(2)
	}

	// the alt screen owns the terminal, so logs only go to the configured file
	logger, closeLog, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose, Out: io.Discard})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	client := uniprot.NewClient(cfg.UniProtBaseURL, cfg.FetchTimeout())
	client.MinLength = cfg.MinLength
	client.Logger = logger
	fetcher, err := uniprot.NewFetcher(client, cfg.CacheSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fetcher.Timeout = cfg.FetchTimeout()
	structures := swissmodel.NewClient(cfg.SwissModelBaseURL, cfg.StructureTimeout())

	m := newModel(fetcher, structures, *species, *maxSeq, cfg.WrapWidth, cfg.FetchTimeout())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}

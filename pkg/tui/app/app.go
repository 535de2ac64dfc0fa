// Package teaui hosts the Bubble Tea program for the exam-merge TUI.
package teaui

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/catalog"
	"tableflip.dev/exammerge/pkg/logging"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/selection"
	"tableflip.dev/exammerge/pkg/store"
	"tableflip.dev/exammerge/pkg/tui/components/eventviewer"
	"tableflip.dev/exammerge/pkg/tui/components/help"
	"tableflip.dev/exammerge/pkg/tui/events"
	"tableflip.dev/exammerge/pkg/tui/theme"
	"tableflip.dev/exammerge/pkg/tui/toast"
	"tableflip.dev/exammerge/pkg/tui/view"
)

const (
	helpText = "tab 열 이동 · ↑/↓ 선택 · enter 확정 · 1-5 병합 · r 업데이트 · u 새로고침 · ? 도움말 · q 종료"

	catalogTitle  = "시험범위"
	catalogFailed = "시험범위 데이터를 불러오지 못했습니다."

	promptChooseSchool = "학교를 먼저 선택하세요"
	statusBusy         = "이미 진행 중인 작업입니다"
	statusPreviewReset = "단원 정보를 불러오지 못했습니다"
	statusReloading    = "시험범위 업데이트 중…"

	keepFinishedJobs = 4
)

// mergeAction binds a number key to a merge request shape.
type mergeAction struct {
	key      string
	label    string
	category merge.Category
	kind     merge.Kind
}

var mergeActions = []mergeAction{
	{key: "1", label: string(merge.Descriptive), category: merge.Descriptive, kind: merge.KindScoped},
	{key: "2", label: string(merge.MostFrequent), category: merge.MostFrequent, kind: merge.KindScoped},
	{key: "3", label: string(merge.FinalMock), category: merge.FinalMock, kind: merge.KindFinal},
	{key: "4", label: string(merge.Descriptive) + " 전체", category: merge.Descriptive, kind: merge.KindAll},
	{key: "5", label: string(merge.MostFrequent) + " 전체", category: merge.MostFrequent, kind: merge.KindAll},
}

// Options tunes the controller.
type Options struct {
	Mode       selection.Mode
	ToastDelay time.Duration
}

// Model is the root Bubble Tea model. Every field is owned by the Update
// loop; background work only reaches it through messages.
type Model struct {
	svc    *app.Service
	log    *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	theme  theme.Theme

	width  int
	height int

	sel   *selection.State
	focus view.Column

	grades       []int
	gradeCursor  int
	schools      []string
	schoolCursor int
	hasEnd       map[string]bool

	loadingCatalog bool
	loadingPreview bool
	preview        *preview.Result

	catalogSeq int
	schoolsSeq int
	previewSeq int
	reloadSeq  int
	reloading  bool

	tracker *merge.Tracker
	toast   *toast.Model

	prompt    string
	status    string
	downloads int

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc

	debugEnabled bool
	eventViewer  *eventviewer.Model

	help *help.Model
}

// New creates a model backed by svc.
func New(svc *app.Service, opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	log := logging.Nop()
	if svc != nil && svc.Log != nil {
		log = svc.Log.With("component", "tui")
	}
	return &Model{
		svc:     svc,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		theme:   theme.Default(),
		sel:     selection.New(opts.Mode),
		focus:   view.ColumnGrades,
		hasEnd:  map[string]bool{},
		tracker: merge.NewTracker(),
		toast:   toast.New(opts.ToastDelay),
	}
}

// Run launches the Bubble Tea program.
func Run(ctx context.Context, svc *app.Service, cfg *store.Config) error {
	opts := Options{}
	if cfg != nil {
		opts.Mode = selection.ParseMode(cfg.Mode)
		opts.ToastDelay = cfg.Toast
	}
	m := New(svc, opts)
	defer m.cancel()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the catalog and starts watching the downloads directory.
func (m *Model) Init() tea.Cmd {
	return batch([]tea.Cmd{m.loadCatalog(events.OriginInit), startWatchCmd(m.ctx, m.svc)})
}

func (m *Model) loadCatalog(origin events.Origin) tea.Cmd {
	if m.svc == nil {
		return nil
	}
	m.catalogSeq++
	m.loadingCatalog = true
	return loadCatalogCmd(m.ctx, m.svc, origin, m.catalogSeq)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.noteEvent(msg)
	var cmds []tea.Cmd

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.layoutDebug()
		if m.help != nil {
			m.help.SetSize(m.helpSize())
		}
	case tea.KeyPressMsg:
		if m.help != nil && v.String() != "ctrl+c" {
			cmds = append(cmds, m.updateHelp(v))
			break
		}
		if quit := m.handleKey(v, &cmds); quit {
			m.stopWatch()
			m.cancel()
			return m, tea.Quit
		}
	case events.CatalogLoadedMsg:
		m.handleCatalogLoaded(v, &cmds)
	case events.GradeSchoolsLoadedMsg:
		m.handleGradeSchools(v)
	case events.PreviewLoadedMsg:
		m.handlePreview(v)
	case events.ReloadDoneMsg:
		m.handleReload(v, &cmds)
	case events.JobUpdateMsg:
		// terminal snapshots wait for JobFinishedMsg so a failed save can
		// still turn the job into a failure
		if !v.Job.State.Terminal() {
			m.tracker.Update(v.Job)
		}
		cmds = append(cmds, waitJobCmd(m.svc, v.Handle))
	case events.JobFinishedMsg:
		m.handleJobFinished(v, &cmds)
	case toast.ClearMsg:
		m.toast.Update(v)
	case watchStartedMsg:
		if v.err != nil {
			m.log.Warn("downloads watch unavailable", "error", v.err)
			break
		}
		m.stopWatch()
		m.watchCh = v.ch
		m.watchCancel = v.cancel
		cmds = append(cmds, m.waitForWatch(), countDownloadsCmd(m.ctx, m.svc))
	case watchEventMsg:
		cmds = append(cmds, countDownloadsCmd(m.ctx, m.svc), m.waitForWatch())
	case watchStoppedMsg:
		m.watchCh = nil
	case downloadsCountedMsg:
		if v.err == nil {
			m.downloads = v.count
		}
	}

	return m, batch(cmds)
}

func (m *Model) handleKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return true
	case "tab":
		if m.focus == view.ColumnGrades {
			m.focus = view.ColumnSchools
		} else {
			m.focus = view.ColumnGrades
		}
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		m.prompt = ""
		if m.focus == view.ColumnGrades {
			m.chooseGrade(cmds)
		} else {
			m.chooseSchool(cmds)
		}
	case "r":
		m.startReload(cmds)
	case "u":
		if cmd := m.loadCatalog(events.OriginRefresh); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
	case "?":
		m.help = help.New(m.helpSize())
	case "`":
		m.toggleDebug()
	case "pgup":
		if m.eventViewer != nil {
			m.eventViewer.Scroll(-5)
		}
	case "pgdown":
		if m.eventViewer != nil {
			m.eventViewer.Scroll(5)
		}
	default:
		for _, a := range mergeActions {
			if a.key == key {
				m.startMerge(a, cmds)
				break
			}
		}
	}
	return false
}

func (m *Model) moveCursor(delta int) {
	if m.focus == view.ColumnGrades {
		m.gradeCursor = clamp(m.gradeCursor+delta, 0, len(m.grades)-1)
		return
	}
	m.schoolCursor = clamp(m.schoolCursor+delta, 0, len(m.schools)-1)
}

func (m *Model) chooseGrade(cmds *[]tea.Cmd) {
	if len(m.grades) == 0 {
		return
	}
	g := m.grades[m.gradeCursor]
	if cur, ok := m.sel.Grade(); ok && cur == g {
		m.focus = view.ColumnSchools
		return
	}
	m.sel.SetGrade(g)
	m.clearPreview()
	m.schools = m.svc.Catalog.SchoolsForGrade(g)
	m.schoolCursor = 0
	m.hasEnd = map[string]bool{}
	m.schoolsSeq++
	m.focus = view.ColumnSchools
	m.log.Debug("grade chosen", "grade", g, "schools", len(m.schools))
	*cmds = append(*cmds, loadGradeSchoolsCmd(m.ctx, m.svc, g, m.schoolsSeq))
}

func (m *Model) chooseSchool(cmds *[]tea.Cmd) {
	if _, ok := m.sel.Grade(); !ok {
		m.prompt = view.PromptGradeFirst
		return
	}
	if len(m.schools) == 0 {
		return
	}
	name := m.schools[m.schoolCursor]
	var err error
	switch {
	case m.sel.Mode() == selection.ModeMulti:
		err = m.sel.ToggleSchool(name)
	case m.sel.Has(name):
		err = m.sel.SelectSchool("")
	default:
		err = m.sel.SelectSchool(name)
	}
	if err != nil {
		m.prompt = view.PromptGradeFirst
		return
	}
	m.refreshPreview(cmds)
}

// refreshPreview invalidates any in-flight preview and, when exactly one
// school is selected, requests a new one.
func (m *Model) refreshPreview(cmds *[]tea.Cmd) {
	m.clearPreview()
	key := m.sel.Key()
	if key.School == "" {
		return
	}
	m.loadingPreview = true
	*cmds = append(*cmds, loadPreviewCmd(m.ctx, m.svc, key, m.previewSeq))
}

func (m *Model) clearPreview() {
	m.previewSeq++
	m.preview = nil
	m.loadingPreview = false
}

func (m *Model) handleCatalogLoaded(msg events.CatalogLoadedMsg, cmds *[]tea.Cmd) {
	if msg.Seq != m.catalogSeq {
		m.dropStale("catalog", fmt.Sprintf("seq %d, current %d", msg.Seq, m.catalogSeq))
		return
	}
	m.loadingCatalog = false
	if msg.Err != nil {
		m.log.Warn("catalog load failed", "origin", msg.Origin, "error", msg.Err)
		*cmds = append(*cmds, m.toast.Show(toast.Toast{Title: catalogTitle, Body: catalogFailed, Level: toast.LevelError}))
		return
	}
	m.applyCatalog(msg.Entries, cmds)
	m.status = fmt.Sprintf("학년 %d개 · 학교 %d개", len(m.grades), len(m.svc.Catalog.Schools()))
}

// applyCatalog swaps the catalog snapshot and keeps whatever part of the
// selection still exists in it.
func (m *Model) applyCatalog(entries []catalog.Entry, cmds *[]tea.Cmd) {
	m.svc.Catalog.Replace(entries)
	m.grades = m.svc.Catalog.Grades()
	m.gradeCursor = clamp(m.gradeCursor, 0, len(m.grades)-1)

	g, ok := m.sel.Grade()
	if !ok {
		return
	}
	idx := sort.SearchInts(m.grades, g)
	if idx >= len(m.grades) || m.grades[idx] != g {
		m.sel.ClearGrade()
		m.schools = nil
		m.hasEnd = map[string]bool{}
		m.schoolsSeq++
		m.clearPreview()
		m.focus = view.ColumnGrades
		return
	}
	m.gradeCursor = idx
	m.schools = m.svc.Catalog.SchoolsForGrade(g)
	m.schoolCursor = clamp(m.schoolCursor, 0, len(m.schools)-1)

	known := map[string]bool{}
	for _, s := range m.schools {
		known[s] = true
	}
	changed := false
	for _, s := range m.sel.Schools() {
		if !known[s] {
			_ = m.sel.ToggleSchool(s)
			changed = true
		}
	}
	if changed {
		m.refreshPreview(cmds)
	}
}

func (m *Model) handleGradeSchools(msg events.GradeSchoolsLoadedMsg) {
	g, _ := m.sel.Grade()
	if msg.Seq != m.schoolsSeq || msg.Grade != g {
		m.dropStale("grade schools", fmt.Sprintf("grade %d seq %d", msg.Grade, msg.Seq))
		return
	}
	if msg.Err != nil {
		m.log.Warn("grade schools lookup failed", "grade", msg.Grade, "error", msg.Err)
		m.hasEnd = map[string]bool{}
		return
	}
	m.hasEnd = msg.Schools
}

func (m *Model) handlePreview(msg events.PreviewLoadedMsg) {
	if msg.Seq != m.previewSeq || msg.Key != m.sel.Key() {
		m.dropStale("preview", fmt.Sprintf("%s seq %d", msg.Key, msg.Seq))
		return
	}
	m.loadingPreview = false
	if msg.Err != nil {
		m.log.Warn("preview failed", "key", msg.Key.String(), "error", msg.Err)
		_ = m.sel.SelectSchool("")
		m.clearPreview()
		m.status = statusPreviewReset
		return
	}
	res := msg.Result
	m.preview = &res
}

func (m *Model) startReload(cmds *[]tea.Cmd) {
	if m.reloading || m.svc == nil {
		return
	}
	m.reloading = true
	m.reloadSeq++
	m.status = statusReloading
	*cmds = append(*cmds, reloadCmd(m.ctx, m.svc, m.reloadSeq))
}

func (m *Model) handleReload(msg events.ReloadDoneMsg, cmds *[]tea.Cmd) {
	if msg.Seq != m.reloadSeq {
		m.dropStale("reload", fmt.Sprintf("seq %d", msg.Seq))
		return
	}
	m.reloading = false
	m.status = ""
	title, body := app.ReloadOutcome(msg.Err)
	level := toast.LevelSuccess
	if msg.Err != nil {
		level = toast.LevelError
	}
	*cmds = append(*cmds, m.toast.Show(toast.Toast{Title: title, Body: body, Level: level}))
	if msg.Err != nil {
		return
	}

	// the reload snapshot supersedes any catalog load still in flight
	m.catalogSeq++
	m.loadingCatalog = false
	m.applyCatalog(msg.Entries, cmds)
	if g, ok := m.sel.Grade(); ok {
		m.schoolsSeq++
		*cmds = append(*cmds, loadGradeSchoolsCmd(m.ctx, m.svc, g, m.schoolsSeq))
	}
	if m.sel.IsReady() {
		m.refreshPreview(cmds)
	}
}

// requests expands an action into one request per selected school.
func (m *Model) requests(a mergeAction) []merge.Request {
	g, ok := m.sel.Grade()
	if !ok {
		return nil
	}
	schools := m.sel.Schools()
	out := make([]merge.Request, 0, len(schools))
	for _, s := range schools {
		out = append(out, merge.Request{Grade: g, School: s, Category: a.category, Kind: a.kind})
	}
	return out
}

func (m *Model) startMerge(a mergeAction, cmds *[]tea.Cmd) {
	if !m.sel.IsReady() {
		if _, ok := m.sel.Grade(); !ok {
			m.prompt = view.PromptGradeFirst
		} else {
			m.prompt = promptChooseSchool
		}
		return
	}
	m.prompt = ""
	started := 0
	for _, req := range m.requests(a) {
		if m.tracker.Busy(req.Slot()) {
			continue
		}
		h := m.svc.StartMerge(m.ctx, req)
		m.tracker.Track(h.Job())
		m.log.Info("merge started", "job", h.Job().ID.String(), "request", req.Label())
		*cmds = append(*cmds, waitJobCmd(m.svc, h))
		started++
	}
	if started == 0 {
		m.status = statusBusy
	}
}

func (m *Model) handleJobFinished(msg events.JobFinishedMsg, cmds *[]tea.Cmd) {
	j := msg.Result.Job
	if prev, ok := m.tracker.Get(j.ID); !ok || prev.State.Terminal() {
		m.log.Debug("finish dropped", "job", j.ID.String(), "tracked", ok)
		return
	}
	m.tracker.Update(j)
	title, body, ok := merge.Outcome(j)
	if !ok {
		return
	}
	level := toast.LevelSuccess
	if j.State == merge.StateFailed {
		level = toast.LevelError
		m.log.Warn("merge failed", "job", j.ID.String(), "error", j.Err)
	} else {
		m.status = "저장됨: " + msg.Path
	}
	*cmds = append(*cmds, m.toast.Show(toast.Toast{Title: title, Body: body, Level: level}))
	m.tracker.Prune(keepFinishedJobs)
}

func (m *Model) buttons() []view.Button {
	ready := m.sel.IsReady()
	out := make([]view.Button, 0, len(mergeActions))
	for _, a := range mergeActions {
		busy := false
		if ready {
			for _, req := range m.requests(a) {
				if m.tracker.Busy(req.Slot()) {
					busy = true
					break
				}
			}
		}
		out = append(out, view.Button{Key: a.key, Label: a.label, Enabled: ready && !busy, Busy: busy})
	}
	return out
}

func (m *Model) viewState() view.State {
	g, hasGrade := m.sel.Grade()
	s := view.State{
		Focus:          m.focus,
		GradeCursor:    m.gradeCursor,
		GradeChosen:    hasGrade,
		SchoolCursor:   m.schoolCursor,
		LoadingCatalog: m.loadingCatalog,
		LoadingPreview: m.loadingPreview,
		Preview:        m.preview,
		Buttons:        m.buttons(),
		Jobs:           m.tracker.Jobs(),
		Prompt:         m.prompt,
		Status:         m.footerStatus(),
		Help:           helpText,
	}
	for _, grade := range m.grades {
		s.Grades = append(s.Grades, view.GradeRow{Grade: grade, Selected: hasGrade && grade == g})
	}
	for _, name := range m.schools {
		s.Schools = append(s.Schools, view.SchoolRow{Name: name, HasEnd: m.hasEnd[name], Selected: m.sel.Has(name)})
	}
	if t, ok := m.toast.Current(); ok {
		s.Toast = &t
	}
	return s
}

func (m *Model) footerStatus() string {
	status := m.status
	if m.watchCh != nil {
		if status != "" {
			status += " · "
		}
		status += fmt.Sprintf("PDF %d개", m.downloads)
	}
	return status
}

// View renders the screen and, when enabled, the debug log below it.
func (m *Model) View() (string, *tea.Cursor) {
	if m.help != nil {
		return m.help.View(), nil
	}
	body := view.Render(m.viewState(), m.theme, m.width)
	if m.debugEnabled && m.eventViewer != nil {
		body += "\n" + m.eventViewer.View()
	}
	return body, nil
}

// updateHelp closes the overlay on ?, esc or q and scrolls it otherwise.
func (m *Model) updateHelp(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "?", "esc", "q":
		m.help = nil
		return nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return cmd
}

func (m *Model) helpSize() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// fileChangedMsg reports a write to the watched grid file.
type fileChangedMsg struct{ path string }

type watchErrMsg struct{ err error }

// watch starts watching p for writes, replacing any earlier watch. The
// directory is watched so editors that replace the file are still seen.
func (m *Model) watch(p string) {
	if m.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			m.log.Warn("file watch unavailable", "err", err)
			return
		}
		m.watcher = w
	}
	if m.watchPath != "" {
		_ = m.watcher.Remove(filepath.Dir(m.watchPath))
	}
	if err := m.watcher.Add(filepath.Dir(p)); err != nil {
		m.log.Warn("watching file", "path", p, "err", err)
		m.watchPath = ""
		return
	}
	m.watchPath = p
}

// waitForChange blocks until the watcher sees a write or create of a file,
// then delivers it as a message. Update filters by the watched name.
func waitForChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					return fileChangedMsg{path: ev.Name}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// reload re-reads the watched file after a change, keeping the timeline
// position when the new file has as many records.
func (m *Model) reload(p string) {
	if filepath.Clean(p) != filepath.Clean(m.watchPath) {
		return
	}
	cur := m.cur
	v := *m.view
	m.loadPath(p)
	*m.view = v
	if cur < len(m.records) {
		m.cur = cur
		m.driver.SetRecord(m.records[cur])
	}
	m.status = "reloaded: " + filepath.Base(p)
}

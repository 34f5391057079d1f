package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/contractdesk/internal/common"
)

// programNotifier turns controller notifications into toast messages.
type programNotifier struct {
	send func(tea.Msg)
	mu   sync.Mutex
}

func (n *programNotifier) bind(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

func (n *programNotifier) emit(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Success implements listview.Notifier.
func (n *programNotifier) Success(msg string) {
	n.emit(toastMsg{text: msg})
}

// Error implements listview.Notifier.
func (n *programNotifier) Error(err error) {
	n.emit(toastMsg{text: common.Message(err), isError: true})
}

package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brinaregal/brina/internal/service"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ordersLoadedMsg:
		m.loading = false
		m.orders = msg.orders
		m.err = nil
		if m.selected >= len(m.orders) {
			m.selected = len(m.orders) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		// keep the detail view in sync with the latest data
		if m.view == ViewOrderDetail && m.detail != nil {
			for i := range m.orders {
				if m.orders[i].ID == m.detail.ID {
					m.detail = &m.orders[i]
					break
				}
			}
		}
		return m, nil

	case orderUpdatedMsg:
		m.loading = false
		m.err = nil
		if msg.order != nil {
			m.notice = msg.order.Reference + " → " + string(msg.order.Status)
			if m.detail != nil && m.detail.ID == msg.order.ID {
				m.detail = msg.order
			}
		}
		return m, m.loadOrders()

	case errorMsg:
		m.loading = false
		m.err = msg.err
		if errors.Is(msg.err, service.ErrInvalidTransition) {
			// someone else decided first; show the fresh state
			return m, m.loadOrders()
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadOrders(), tickCmd())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m.handleUp()

	case key.Matches(msg, m.keys.Down):
		return m.handleDown()

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Back):
		return m.handleBack()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadOrders()

	case key.Matches(msg, m.keys.All):
		m.showAll = !m.showAll
		m.selected = 0
		m.loading = true
		return m, m.loadOrders()

	case key.Matches(msg, m.keys.Confirm):
		return m.decide(true)

	case key.Matches(msg, m.keys.Reject):
		return m.decide(false)
	}

	return m, nil
}

func (m Model) decide(confirm bool) (tea.Model, tea.Cmd) {
	order := m.current()
	if order == nil || !order.Status.Awaiting() {
		return m, nil
	}
	m.loading = true
	m.notice = ""
	if confirm {
		return m, m.confirmOrder(order.ID)
	}
	return m, m.rejectOrder(order.ID)
}

func (m Model) handleUp() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewOrderList:
		if len(m.orders) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.orders) - 1
			}
		}
	case ViewOrderDetail:
		if m.detailScrollOffset > 0 {
			m.detailScrollOffset--
		}
	}
	return m, nil
}

func (m Model) handleDown() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewOrderList:
		if len(m.orders) > 0 {
			m.selected++
			if m.selected >= len(m.orders) {
				m.selected = 0
			}
		}
	case ViewOrderDetail:
		if m.detail != nil && m.detailScrollOffset < len(m.detail.Items) {
			m.detailScrollOffset++
		}
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.view == ViewOrderList && len(m.orders) > 0 {
		order := m.orders[m.selected]
		m.detail = &order
		m.view = ViewOrderDetail
		m.detailScrollOffset = 0
	}
	return m, nil
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	if m.view == ViewOrderDetail {
		m.view = ViewOrderList
		m.detail = nil
	}
	return m, nil
}

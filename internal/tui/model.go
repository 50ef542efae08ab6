// 文件路径: internal/tui/model.go
// 模块说明: 终端订单看板，管理员可在厨房直接确认或拒绝订单。
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brinaregal/brina/internal/service"
)

// ViewType 表示当前视图
type ViewType int

const (
	ViewOrderList   ViewType = iota // 订单列表
	ViewOrderDetail                 // 订单详情
)

const (
	boardPageSize   = 100
	refreshInterval = 5 * time.Second
	actionTimeout   = 10 * time.Second
)

// Model 是订单看板的 TUI 模型
type Model struct {
	// 数据
	orders   []service.OrderView
	selected int
	showAll  bool // false 时只显示待处理订单

	view   ViewType
	detail *service.OrderView

	// 依赖
	admin    service.AdminOrderService
	actor    string
	location *time.Location

	// 终端尺寸
	width  int
	height int

	detailScrollOffset int

	// 状态
	loading bool
	err     error
	notice  string

	keys keyMap
}

// keyMap 定义全部按键绑定
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Confirm key.Binding
	Reject  key.Binding
	All     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "confirm"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all/open"),
		),
	}
}

// NewModel 创建订单看板。actor 会写入审核日志。
func NewModel(admin service.AdminOrderService, actor string, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	if actor == "" {
		actor = "board"
	}
	return Model{
		admin:    admin,
		actor:    actor,
		location: loc,
		view:     ViewOrderList,
		keys:     defaultKeyMap(),
		loading:  true,
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadOrders(),
		tickCmd(),
	)
}

// 消息类型

type ordersLoadedMsg struct {
	orders []service.OrderView
}

type orderUpdatedMsg struct {
	order *service.OrderView
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

// 命令

func (m Model) loadOrders() tea.Cmd {
	showAll := m.showAll
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		page, err := m.admin.List(ctx, service.AdminOrderFilter{Page: 1, PageSize: boardPageSize})
		if err != nil {
			return errorMsg{err: err}
		}
		orders := page.Orders
		if !showAll {
			orders = openOrders(orders)
		}
		return ordersLoadedMsg{orders: orders}
	}
}

func (m Model) confirmOrder(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		order, err := m.admin.Confirm(ctx, id, m.actor)
		if err != nil {
			return errorMsg{err: err}
		}
		return orderUpdatedMsg{order: order}
	}
}

func (m Model) rejectOrder(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		order, err := m.admin.Reject(ctx, id, "", m.actor)
		if err != nil {
			return errorMsg{err: err}
		}
		return orderUpdatedMsg{order: order}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// 辅助函数

// openOrders keeps what still waits for a decision.
func openOrders(orders []service.OrderView) []service.OrderView {
	out := make([]service.OrderView, 0, len(orders))
	for _, o := range orders {
		if o.Status.Awaiting() {
			out = append(out, o)
		}
	}
	return out
}

func (m Model) current() *service.OrderView {
	if m.view == ViewOrderDetail && m.detail != nil {
		return m.detail
	}
	if m.selected < 0 || m.selected >= len(m.orders) {
		return nil
	}
	return &m.orders[m.selected]
}

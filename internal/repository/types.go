// 文件路径: internal/repository/types.go
// 模块说明: 仓储层使用的持久化模型，时间字段统一为 Unix 秒。
package repository

// User 表示顾客或后台管理员账户。
type User struct {
	ID          int64
	Name        string
	Email       string
	Phone       string
	Address     string
	Password    string
	IsAdmin     bool
	Status      int
	LastLoginAt int64
	CreatedAt   int64
	UpdatedAt   int64
}

const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// Active reports whether the account may sign in.
func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive
}

// Product 是菜单中的一道菜品，价格单位为西非法郎（XOF）。
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Category    string
	ImageURL    string
	Available   bool
	Sort        int64
	CreatedAt   int64
	UpdatedAt   int64
}

// OrderItem 是下单时冻结的菜品快照。
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Order 同时承载外卖订单与餐桌预订（Kind 区分）。
type Order struct {
	ID              int64
	Reference       string
	Kind            string
	UserID          *int64
	CustomerName    string
	Phone           string
	Items           []OrderItem
	Total           int64
	Place           string
	PaymentProofURL string
	Status          string
	StatusReason    string
	PartySize       int
	ReservationDate string
	ReservationTime string
	Instructions    string
	AlertedAt       int64
	CreatedAt       int64
	UpdatedAt       int64
}

// Review 是顾客留下的评价。
type Review struct {
	ID         int64
	UserID     *int64
	AuthorName string
	Rating     int
	Comment    string
	Status     string
	CreatedAt  int64
	UpdatedAt  int64
}

// RatingSummary aggregates review ratings.
type RatingSummary struct {
	Count   int64
	Average float64
}

// MediaAsset 记录一次图片上传结果。
type MediaAsset struct {
	ID          int64
	PublicID    string
	URL         string
	Folder      string
	ContentType string
	Size        int64
	Driver      string
	CreatedAt   int64
}

// Setting 表示键值形式的系统配置。
type Setting struct {
	Key       string
	Value     string
	Category  string
	UpdatedAt int64
}

// LoginLog 记录一次登录尝试。
type LoginLog struct {
	ID        int64
	UserID    *int64
	Email     string
	IP        string
	UserAgent string
	Success   bool
	Reason    string
	CreatedAt int64
	UpdatedAt int64
}

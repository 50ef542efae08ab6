// 文件路径: internal/repository/interfaces.go
// 模块说明: 仓储接口，由 sqlite 包实现。
package repository

import "context"

// Store 暴露每个聚合根对应的仓储接口。
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Reviews() ReviewRepository
	MediaAssets() MediaAssetRepository
	Settings() SettingRepository
	LoginLogs() LoginLogRepository
}

// UserRepository 定义用户相关数据访问方法。
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	// CreateFirstAdmin inserts user only while no admin exists; otherwise ErrAdminExists.
	CreateFirstAdmin(ctx context.Context, user *User) (*User, error)
	Save(ctx context.Context, user *User) error
	TouchLogin(ctx context.Context, id int64, at int64) error
	HasAdmin(ctx context.Context) (bool, error)
	Search(ctx context.Context, filter UserSearchFilter) ([]*User, error)
	CountFiltered(ctx context.Context, filter UserSearchFilter) (int64, error)
}

// ProductRepository 管理菜单菜品。
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	Categories(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*Product, error)
	Create(ctx context.Context, product *Product) (*Product, error)
	Update(ctx context.Context, product *Product) error
	SetAvailability(ctx context.Context, id int64, available bool, updatedAt int64) error
	SetImage(ctx context.Context, id int64, imageURL string, updatedAt int64) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// OrderRepository 管理订单与预订。
type OrderRepository interface {
	Create(ctx context.Context, order *Order) (*Order, error)
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByReference(ctx context.Context, reference string) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	// UpdateStatus moves an order from one status to another; it reports false
	// when the stored status no longer equals from.
	UpdateStatus(ctx context.Context, id int64, from, to, reason string, updatedAt int64) (bool, error)
	ListUnalerted(ctx context.Context, status string, createdBefore int64, limit int) ([]*Order, error)
	MarkAlerted(ctx context.Context, id int64, alertedAt int64) error
	SumTotal(ctx context.Context, status string, createdFrom, createdTo int64) (int64, error)
	CountReservationsFrom(ctx context.Context, date string, statuses []string) (int64, error)
}

// ReviewRepository 管理顾客评价。
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	FindByID(ctx context.Context, id int64) (*Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]*Review, error)
	Count(ctx context.Context, filter ReviewFilter) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string, updatedAt int64) error
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, status string) (RatingSummary, error)
}

// MediaAssetRepository 记录上传到媒体服务的文件。
type MediaAssetRepository interface {
	Create(ctx context.Context, asset *MediaAsset) (*MediaAsset, error)
	FindByPublicID(ctx context.Context, publicID string) (*MediaAsset, error)
	DeleteByPublicID(ctx context.Context, publicID string) error
}

// SettingRepository 处理系统配置的存取。
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
	UpsertMany(ctx context.Context, settings []Setting) error
	// InsertIfAbsent returns the stored row and whether this call created it.
	InsertIfAbsent(ctx context.Context, setting *Setting) (*Setting, bool, error)
	ListByCategory(ctx context.Context, category string) ([]Setting, error)
}

// LoginLogRepository 持久化登录尝试。
type LoginLogRepository interface {
	Create(ctx context.Context, entry *LoginLog) error
	ListByEmail(ctx context.Context, email string, limit int) ([]*LoginLog, error)
	// DeleteBefore removes entries created before the unix timestamp and
	// reports how many rows were removed.
	DeleteBefore(ctx context.Context, before int64) (int64, error)
}

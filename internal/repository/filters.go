// 文件路径: internal/repository/filters.go
package repository

// NoLimit disables paging for listings that support it (sqlite treats LIMIT -1 as unbounded).
const NoLimit = -1

// UserSearchFilter constrains admin user listings.
type UserSearchFilter struct {
	Keyword string
	IsAdmin *bool
	Limit   int
	Offset  int
}

// ProductFilter constrains menu listings.
type ProductFilter struct {
	Category      string
	AvailableOnly bool
}

// OrderFilter constrains back-office order listings.
type OrderFilter struct {
	Status  string
	Kind    string
	Keyword string // matches reference, phone or customer name
	UserID  *int64
	// CreatedFrom/CreatedTo are inclusive/exclusive unix bounds; zero means unbounded.
	CreatedFrom int64
	CreatedTo   int64
	Limit       int
	Offset      int
}

// ReviewFilter constrains review listings.
type ReviewFilter struct {
	Status string
	Limit  int
	Offset int
}

// 文件路径: internal/service/errors.go
package service

import "errors"

var (
	// ErrNotFound indicates requested resource does not exist.
	ErrNotFound = errors.New("service: not found / 未找到资源")
	// ErrInvalidCredentials indicates provided credentials are wrong.
	ErrInvalidCredentials = errors.New("service: invalid credentials / 凭证无效")
	// ErrRateLimited indicates caller exceeded allowed attempts.
	ErrRateLimited = errors.New("service: rate limited / 请求过于频繁")
	// ErrAccountDisabled indicates the account is disabled.
	ErrAccountDisabled = errors.New("service: account disabled / 账号已禁用")
	// ErrUnauthorized indicates missing or invalid auth tokens.
	ErrUnauthorized = errors.New("service: unauthorized / 未授权")
	// ErrForbidden indicates the caller lacks admin rights.
	ErrForbidden = errors.New("service: forbidden / 无权限")
	// ErrInvalidEmail indicates malformed email inputs.
	ErrInvalidEmail = errors.New("service: invalid email / 邮箱无效")
	// ErrInvalidPassword indicates password does not meet requirements.
	ErrInvalidPassword = errors.New("service: invalid password / 密码无效")
	// ErrPasswordMismatch indicates the confirmation differs from the password.
	ErrPasswordMismatch = errors.New("service: password confirmation mismatch / 两次密码不一致")
	// ErrEmailExists indicates email already registered.
	ErrEmailExists = errors.New("service: email already exists / 邮箱已存在")
	// ErrAlreadyInitialized indicates the install wizard already ran.
	ErrAlreadyInitialized = errors.New("service: already initialized / 系统已初始化")
	// ErrInvalidName indicates an empty or oversized name.
	ErrInvalidName = errors.New("service: invalid name / 名称无效")
	// ErrInvalidPhone indicates a missing or malformed phone number.
	ErrInvalidPhone = errors.New("service: invalid phone / 电话号码无效")

	// ErrEmptyCart indicates checkout without items.
	ErrEmptyCart = errors.New("service: cart is empty / 购物车为空")
	// ErrProductUnavailable indicates the product is hidden from the menu.
	ErrProductUnavailable = errors.New("service: product unavailable / 菜品暂不可售")
	// ErrInvalidQuantity indicates a non-positive or excessive quantity.
	ErrInvalidQuantity = errors.New("service: invalid quantity / 数量无效")
	// ErrInvalidPlace indicates an unknown delivery zone.
	ErrInvalidPlace = errors.New("service: invalid delivery place / 配送区域无效")
	// ErrPaymentProofRequired indicates the zone needs a prepayment receipt.
	ErrPaymentProofRequired = errors.New("service: payment proof required / 需要付款凭证")
	// ErrInvalidTransition indicates the order status cannot move to the requested state.
	ErrInvalidTransition = errors.New("service: invalid status transition / 订单状态不可变更")

	// ErrInvalidPartySize indicates party size outside the accepted range.
	ErrInvalidPartySize = errors.New("service: invalid party size / 人数无效")
	// ErrInvalidDate indicates a malformed or past reservation date.
	ErrInvalidDate = errors.New("service: invalid date / 日期无效")
	// ErrInvalidTimeSlot indicates the time is not one of the offered slots.
	ErrInvalidTimeSlot = errors.New("service: invalid time slot / 时段无效")

	// ErrInvalidRating indicates a rating outside 1..5.
	ErrInvalidRating = errors.New("service: invalid rating / 评分无效")
	// ErrInvalidPrice indicates a non-positive price.
	ErrInvalidPrice = errors.New("service: invalid price / 价格无效")
	// ErrProductExists indicates a product with the same name exists.
	ErrProductExists = errors.New("service: product already exists / 菜品已存在")

	// ErrInvalidFile indicates the upload is not an accepted image.
	ErrInvalidFile = errors.New("service: invalid file / 文件无效")
	// ErrFileTooLarge indicates the upload exceeds the size limit.
	ErrFileTooLarge = errors.New("service: file too large / 文件过大")
)

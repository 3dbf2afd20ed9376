package dto

// UserQueryDTO 管理端用户列表查询
// - keyword 在 username/nickname/email/phone 上做不区分大小写的模糊 OR 匹配
// - status 需为合法状态，精确匹配
type UserQueryDTO struct {
	Page     int    `form:"page" binding:"omitempty,gte=1" example:"1"`
	PageSize int    `form:"pageSize" binding:"omitempty,gte=1" example:"10"`
	Keyword  string `form:"keyword" example:"alice"`
	Username string `form:"username" example:"alice"`
	Nickname string `form:"nickname" example:"小明"`
	Email    string `form:"email" example:"example.com"`
	Phone    string `form:"phone" example:"138"`
	Status   string `form:"status" binding:"omitempty,userstatus" example:"ACTIVE"`
}

package model

import "time"

// Identity 认证协作方在每个请求上提供的用户身份
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// User 用户文档，由外部认证协作方创建；本服务只读取并更新资料字段
type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Username   string    `bson:"username" json:"username"`
	Email      string    `bson:"email" json:"email"`
	FirstName  string    `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName   string    `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Bio        string    `bson:"bio,omitempty" json:"bio,omitempty"`
	DOB        string    `bson:"dob,omitempty" json:"dob,omitempty"`
	Gender     string    `bson:"gender,omitempty" json:"gender,omitempty"`
	ProfilePic string    `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	CoverPic   string    `bson:"cover_pic,omitempty" json:"cover_pic,omitempty"`
	CreatedAt  time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

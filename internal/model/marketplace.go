package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ad 市场广告文档，单一属主，无内嵌社交结构
type Ad struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Username    string             `bson:"username" json:"username"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Location    string             `bson:"location" json:"location"`
	Category    string             `bson:"category" json:"category"`
	Images      []string           `bson:"images" json:"images"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// AdInput 创建/更新广告的表单输入
type AdInput struct {
	Title       string  `form:"title" json:"title" binding:"required"`
	Description string  `form:"description" json:"description"`
	Price       float64 `form:"price" json:"price" binding:"required,gte=0"`
	Location    string  `form:"location" json:"location"`
	Category    string  `form:"category" json:"category" binding:"ad_category"`
}

// AdFilter 广告筛选条件
type AdFilter struct {
	Search string
	Sort   string // "1" 价格升序，"2" 价格降序，其余按最新
	Page   int
	Limit  int
}

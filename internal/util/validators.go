package util

import (
	"github.com/go-playground/validator/v10"
)

var adCategories = map[string]bool{
	"pets":        true,
	"accessories": true,
	"food":        true,
	"services":    true,
	"other":       true,
}

// ValidateAdCategory 验证商品分类是否合法
func ValidateAdCategory(fl validator.FieldLevel) bool {
	category, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if category == "" {
		return true // 为空时回退到默认分类
	}
	return adCategories[category]
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return nil
	}
}

// Repository 被分析的 GitHub 仓库
// (html_url, user_id) 唯一：同一个用户对同一仓库只保留一条记录，
// 重复分析时在原记录上追加新的分析版本
type Repository struct {
	ID               int64       `gorm:"primaryKey" json:"id"`
	UserID           int64       `gorm:"not null;index;uniqueIndex:uk_html_url_user" json:"user_id"`
	Name             string      `gorm:"size:200;not null" json:"name"`
	Description      string      `gorm:"size:500" json:"description,omitempty"`
	HTMLURL          string      `gorm:"column:html_url;size:500;not null;uniqueIndex:uk_html_url_user" json:"html_url"`
	MainBranch       string      `gorm:"size:100;default:main" json:"main_branch"`
	PublicRepository bool        `gorm:"default:false" json:"public_repository"`
	Languages        StringArray `gorm:"type:json" json:"languages"`
	Deleted          bool        `gorm:"default:false;index" json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Repository) TableName() string {
	return "repositories"
}

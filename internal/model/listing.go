package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}
	return json.Unmarshal(data, s)
}

// GeneratedContent 模型生成的商品文案
type GeneratedContent struct {
	Titles      []string `json:"titles"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
	Keywords    []string `json:"keywords"`
}

// SavedListing 用户保存的文案
type SavedListing struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	UserEmail   string      `gorm:"size:100;not null;index" json:"-"`
	ProductName string      `gorm:"size:200;not null" json:"product_name"`
	Titles      StringArray `gorm:"type:json" json:"titles"`
	Description string      `gorm:"type:text" json:"description"`
	Bullets     StringArray `gorm:"type:json" json:"bullets"`
	Keywords    StringArray `gorm:"type:json" json:"keywords"`
	SavedAt     time.Time   `gorm:"index" json:"saved_at"`
}

func (SavedListing) TableName() string {
	return "saved_listings"
}

// Content 还原为生成结果
func (l *SavedListing) Content() GeneratedContent {
	return GeneratedContent{
		Titles:      []string(l.Titles),
		Description: l.Description,
		Bullets:     []string(l.Bullets),
		Keywords:    []string(l.Keywords),
	}
}

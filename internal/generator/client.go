package generator

import (
	"context"
)

// Part 请求内容片段，Data 非空时为内联图片
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// IsInline 是否为内联二进制数据
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// FieldSchema 响应对象中的一个必填字段
type FieldSchema struct {
	Name  string
	Array bool // 字符串数组，否则为字符串
}

// ResponseSchema 约束模型输出为 JSON 对象
type ResponseSchema struct {
	Fields []FieldSchema
}

// ModelRequest 一次模型调用
type ModelRequest struct {
	Model       string
	Parts       []Part
	Temperature float32
	Schema      *ResponseSchema
}

// ModelClient 生成式模型客户端，返回模型输出的原始文本
type ModelClient interface {
	GenerateContent(ctx context.Context, req *ModelRequest) (string, error)
}

// ListingSchema 四个字段的商品文案结构
var ListingSchema = &ResponseSchema{
	Fields: []FieldSchema{
		{Name: "titles", Array: true},
		{Name: "description"},
		{Name: "bullets", Array: true},
		{Name: "keywords", Array: true},
	},
}

package shortcode

import (
	"crypto/rand"
	"math/big"
)

const (
	// Charset 包含用于生成短码的所有字符 (base62)
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultLength 是生成的短码的默认长度
	DefaultLength = 6
)

var charsetSize = big.NewInt(int64(len(Charset)))

// Generator 生成固定长度的随机短码
// 它不保证唯一性，唯一性由存储层的唯一约束和分配引擎的重试负责
type Generator struct {
	length int
	source func() (int64, error)
}

// NewGenerator 创建一个短码生成器，length <= 0 时使用默认长度
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length, source: cryptoIndex}
}

// Length 返回生成短码的长度
func (g *Generator) Length() int {
	return g.length
}

// Generate 使用加密安全的随机数生成一个短码
func (g *Generator) Generate() (string, error) {
	b := make([]byte, g.length)
	for i := range b {
		idx, err := g.source()
		if err != nil {
			return "", err
		}
		b[i] = Charset[idx]
	}
	return string(b), nil
}

// cryptoIndex 返回 [0, len(Charset)) 内均匀分布的下标
func cryptoIndex() (int64, error) {
	num, err := rand.Int(rand.Reader, charsetSize)
	if err != nil {
		return 0, err
	}
	return num.Int64(), nil
}

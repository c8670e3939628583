package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
)

// TestPassword 测试用户的明文密码
const TestPassword = "secret123"

var (
	seq          int64
	passwordHash string
)

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	passwordHash = string(hash)
}

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户，默认 Free 套餐 5 次
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	hash := passwordHash
	user := &model.User{
		Email:        fmt.Sprintf("seller_%d@example.com", nextSeq()),
		Name:         "Test Seller",
		PasswordHash: &hash,
		Plan:         model.PlanFree,
		Credits:      5,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = strings.ToLower(email)
	}
}

func WithName(name string) func(*model.User) {
	return func(u *model.User) {
		u.Name = name
	}
}

// WithPlan 设置套餐与次数
func WithPlan(plan string, credits int) func(*model.User) {
	return func(u *model.User) {
		u.Plan = plan
		u.Credits = credits
	}
}

func WithAdmin() func(*model.User) {
	return func(u *model.User) {
		u.IsAdmin = true
	}
}

// TestListing 创建测试文案
func TestListing(t *testing.T, db *gorm.DB, email string, opts ...func(*model.SavedListing)) *model.SavedListing {
	t.Helper()

	listing := &model.SavedListing{
		ID:          uuid.NewString(),
		UserEmail:   email,
		ProductName: fmt.Sprintf("Handloom Saree %d", nextSeq()),
		Titles:      model.StringArray{"Pure Cotton Handloom Saree"},
		Description: "Soft and breathable.",
		Bullets:     model.StringArray{"100% cotton"},
		Keywords:    model.StringArray{"saree", "handloom"},
		SavedAt:     time.Now(),
	}

	for _, opt := range opts {
		opt(listing)
	}

	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}
	return listing
}

func WithSavedAt(at time.Time) func(*model.SavedListing) {
	return func(l *model.SavedListing) {
		l.SavedAt = at
	}
}

// TestPayment 创建测试支付记录，默认 Pro 待审核
func TestPayment(t *testing.T, db *gorm.DB, email string, opts ...func(*model.PaymentRecord)) *model.PaymentRecord {
	t.Helper()

	payment := &model.PaymentRecord{
		ID:             fmt.Sprintf("PAY%06d", nextSeq()),
		UserEmail:      email,
		MobileNumber:   "9876543210",
		PlanName:       model.PlanPro,
		Amount:         "₹299",
		UTR:            "123456789012",
		ScreenshotName: "screenshot.jpg",
		Status:         model.PaymentPending,
		SubmittedAt:    time.Now(),
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return payment
}

func WithPaymentPlan(plan string) func(*model.PaymentRecord) {
	return func(p *model.PaymentRecord) {
		p.PlanName = plan
	}
}

func WithPaymentStatus(status string) func(*model.PaymentRecord) {
	return func(p *model.PaymentRecord) {
		p.Status = status
	}
}

func WithSubmittedAt(at time.Time) func(*model.PaymentRecord) {
	return func(p *model.PaymentRecord) {
		p.SubmittedAt = at
	}
}

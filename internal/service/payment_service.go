package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/pkg/email"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/oss"
	"github.com/qs3c/ecomwords_server/internal/pkg/pubsub"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

const (
	paymentIDLength       = 9
	paymentIDAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	defaultScreenshotName = "screenshot.jpg"
	defaultResumeBatch    = 50
	defaultEffectsLease   = 2 * time.Minute
)

var (
	ErrInvalidPaymentDetails = errors.New("invalid payment details")
	ErrPaymentFinalized      = errors.New("payment has already been reviewed")
	ErrInvalidStatus         = errors.New("status must be Approved or Rejected")
	ErrScreenshotTooLarge    = errors.New("screenshot is too large")
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// EventPublisher 推送支付事件
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event *pubsub.PaymentEvent) error
}

// SubmitPaymentInput 结账表单，Screenshot 为空时只记录文件名
type SubmitPaymentInput struct {
	Email          string
	MobileNumber   string
	PlanName       string
	Amount         string
	UTR            string
	ScreenshotName string
	Screenshot     []byte
}

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	userService *UserService
	notifier    Notifier
	publisher   EventPublisher
	storage     FileStorage
	cfg         *config.Config
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	userService *UserService,
	notifier Notifier,
	publisher EventPublisher,
	storage FileStorage,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		userService: userService,
		notifier:    notifier,
		publisher:   publisher,
		storage:     storage,
		cfg:         cfg,
		logger:      logger,
	}
}

// SubmitPayment 记录一笔待审核的付款并发送确认通知
func (s *PaymentService) SubmitPayment(ctx context.Context, in *SubmitPaymentInput) (*model.PaymentRecord, error) {
	userEmail := model.NormalizeEmail(in.Email)
	if userEmail == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidPaymentDetails)
	}
	mobile := strings.TrimSpace(in.MobileNumber)
	if !mobilePattern.MatchString(mobile) {
		return nil, fmt.Errorf("%w: please enter a valid 10-digit mobile number", ErrInvalidPaymentDetails)
	}
	plan := model.NormalizePlan(in.PlanName)
	if !model.IsPaidPlan(plan) {
		return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidPaymentDetails, in.PlanName)
	}

	amount := strings.TrimSpace(in.Amount)
	if amount == "" {
		amount = s.cfg.Plans[model.PlanKey(plan)].Price
	}
	screenshotName := strings.TrimSpace(in.ScreenshotName)
	if screenshotName == "" {
		screenshotName = defaultScreenshotName
	}

	id, err := s.newPaymentID()
	if err != nil {
		return nil, err
	}

	record := &model.PaymentRecord{
		ID:             id,
		UserEmail:      userEmail,
		MobileNumber:   mobile,
		PlanName:       plan,
		Amount:         amount,
		UTR:            strings.TrimSpace(in.UTR),
		ScreenshotName: screenshotName,
		Status:         model.PaymentPending,
		SubmittedAt:    time.Now(),
	}

	if len(in.Screenshot) > 0 && s.storage != nil {
		url, err := s.uploadScreenshot(id, screenshotName, in.Screenshot)
		if err != nil {
			return nil, err
		}
		record.ScreenshotURL = url
	}

	if err := s.paymentRepo.Create(record); err != nil {
		return nil, err
	}

	s.logger.Info("payment submitted",
		zap.String("payment_id", id),
		zap.String("email", logger.MaskEmail(userEmail)),
		zap.String("plan", plan))

	if err := s.notifier.Dispatch(ctx, email.KindPaymentReceived, userEmail, plan, id); err != nil {
		s.logger.Warn("failed to dispatch payment received notification",
			zap.String("payment_id", id), zap.Error(err))
	}
	s.publish(ctx, pubsub.EventPaymentSubmitted, record)

	return record, nil
}

func (s *PaymentService) uploadScreenshot(paymentID, name string, data []byte) (string, error) {
	if limit := s.cfg.Checkout.MaxScreenshotSize; limit > 0 && int64(len(data)) > limit {
		return "", ErrScreenshotTooLarge
	}
	if !oss.IsImageExt(strings.ToLower(filepath.Ext(name))) {
		return "", ErrInvalidImage
	}
	return s.storage.Upload(oss.ScreenshotKey(paymentID, name), data)
}

// newPaymentID 9 位大写字母数字，冲突时重新生成
func (s *PaymentService) newPaymentID() (string, error) {
	for i := 0; i < 5; i++ {
		id, err := randomPaymentID()
		if err != nil {
			return "", err
		}
		exists, err := s.paymentRepo.ExistsByID(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", errors.New("failed to allocate payment id")
}

func randomPaymentID() (string, error) {
	var sb strings.Builder
	base := big.NewInt(int64(len(paymentIDAlphabet)))
	for i := 0; i < paymentIDLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		sb.WriteByte(paymentIDAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// ListPayments 全部付款，最新的在前
func (s *PaymentService) ListPayments() ([]*model.PaymentRecord, error) {
	return s.paymentRepo.List()
}

// ListUserPayments 用户自己的付款记录
func (s *PaymentService) ListUserPayments(email string) ([]*model.PaymentRecord, error) {
	return s.paymentRepo.ListByEmail(email)
}

// UpdatePaymentStatus 仅允许 Pending 转为 Approved/Rejected，记录不存在时返回 nil, nil
func (s *PaymentService) UpdatePaymentStatus(id, status string) (*model.PaymentRecord, error) {
	return s.transition(id, status, func(now time.Time) (bool, error) {
		return s.paymentRepo.CompareAndSetStatus(id, model.PaymentPending, status, now)
	})
}

func (s *PaymentService) transition(id, status string, cas func(now time.Time) (bool, error)) (*model.PaymentRecord, error) {
	if status != model.PaymentApproved && status != model.PaymentRejected {
		return nil, ErrInvalidStatus
	}

	record, err := s.paymentRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if record.IsFinal() {
		return record, ErrPaymentFinalized
	}

	ok, err := cas(time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// 并发审核，另一方已完成状态变更
		record, err = s.paymentRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		return record, ErrPaymentFinalized
	}

	return s.paymentRepo.GetByID(id)
}

// ReviewPayment 审核付款并执行后续步骤：升级套餐、发送通知、推送事件。
// 状态变更与补做租约在同一条 UPDATE 中完成，后续步骤只由租约持有者执行；
// 重复审核同一结果时只补做未完成的步骤。
func (s *PaymentService) ReviewPayment(ctx context.Context, id, status string) (*model.PaymentRecord, error) {
	token := uuid.NewString()
	record, err := s.transition(id, status, func(now time.Time) (bool, error) {
		return s.paymentRepo.CompareAndSetStatusLeased(id, model.PaymentPending, status, now,
			token, now.Add(s.effectsLease()))
	})
	if errors.Is(err, ErrPaymentFinalized) {
		if record == nil || record.Status != status || record.EffectsComplete() {
			return record, err
		}
	} else if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	finalized := err != nil

	var (
		current *model.PaymentRecord
		ran     bool
	)
	if finalized {
		current, ran, err = s.driveEffects(ctx, id)
	} else {
		s.logger.Info("payment reviewed",
			zap.String("payment_id", id),
			zap.String("status", record.Status),
			zap.String("email", logger.MaskEmail(record.UserEmail)))
		current, ran, err = s.runLeased(ctx, id, token)
	}
	if err != nil {
		// 状态已变更，剩余步骤由定时任务补做
		s.logger.Warn("payment effects incomplete",
			zap.String("payment_id", id), zap.Error(err))
	}
	if current != nil {
		record = current
	}
	if finalized && !ran {
		return record, ErrPaymentFinalized
	}
	return record, nil
}

// driveEffects 拿到租约后补做未完成的步骤，租约被占用时直接返回，ran 表示本次是否执行了步骤
func (s *PaymentService) driveEffects(ctx context.Context, id string) (*model.PaymentRecord, bool, error) {
	token := uuid.NewString()
	now := time.Now()
	acquired, err := s.paymentRepo.AcquireEffectsLease(id, token, now, now.Add(s.effectsLease()))
	if err != nil {
		return nil, false, fmt.Errorf("acquire effects lease: %w", err)
	}
	if !acquired {
		s.logger.Debug("payment effects held by another worker", zap.String("payment_id", id))
		return nil, false, nil
	}
	return s.runLeased(ctx, id, token)
}

// runLeased 持有租约时重新读取记录并执行剩余步骤，结束后释放租约
func (s *PaymentService) runLeased(ctx context.Context, id, token string) (*model.PaymentRecord, bool, error) {
	defer func() {
		if err := s.paymentRepo.ReleaseEffectsLease(id, token); err != nil {
			s.logger.Warn("failed to release effects lease",
				zap.String("payment_id", id), zap.Error(err))
		}
	}()

	record, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	if record.EffectsComplete() {
		return record, false, nil
	}
	return record, true, s.applyEffects(ctx, record)
}

func (s *PaymentService) effectsLease() time.Duration {
	if s.cfg.Reconcile.LeaseSeconds > 0 {
		return time.Duration(s.cfg.Reconcile.LeaseSeconds) * time.Second
	}
	return defaultEffectsLease
}

func (s *PaymentService) applyEffects(ctx context.Context, record *model.PaymentRecord) error {
	if record.NeedsPlanUpgrade() && !record.PlanApplied {
		err := s.userService.UpgradeUserPlan(record.UserEmail, record.PlanName)
		if errors.Is(err, ErrUserNotFound) {
			// 用户已删除，跳过升级
			s.logger.Warn("plan upgrade skipped, user not found",
				zap.String("payment_id", record.ID),
				zap.String("email", logger.MaskEmail(record.UserEmail)))
		} else if err != nil {
			return fmt.Errorf("upgrade plan: %w", err)
		}
		if err := s.paymentRepo.MarkPlanApplied(record.ID); err != nil {
			return err
		}
		record.PlanApplied = true
	}

	if !record.NotificationSent {
		kind := email.KindPaymentRejected
		if record.Status == model.PaymentApproved {
			kind = email.KindPlanActivated
		}
		if err := s.notifier.Dispatch(ctx, kind, record.UserEmail, record.PlanName, record.ID); err != nil {
			return fmt.Errorf("dispatch notification: %w", err)
		}
		if err := s.paymentRepo.MarkNotificationSent(record.ID); err != nil {
			return err
		}
		record.NotificationSent = true
	}

	s.publish(ctx, pubsub.EventPaymentReviewed, record)
	return nil
}

// ResumeIncompleteEffects 补做已审核但未完成后续步骤的付款，返回补做成功的数量
func (s *PaymentService) ResumeIncompleteEffects(ctx context.Context) (int, error) {
	limit := s.cfg.Reconcile.BatchSize
	if limit <= 0 {
		limit = defaultResumeBatch
	}

	records, err := s.paymentRepo.ListIncomplete(limit, time.Now())
	if err != nil {
		return 0, err
	}

	resumed := 0
	for _, record := range records {
		if ctx.Err() != nil {
			return resumed, ctx.Err()
		}
		_, ran, err := s.driveEffects(ctx, record.ID)
		if err != nil {
			s.logger.Warn("failed to resume payment effects",
				zap.String("payment_id", record.ID), zap.Error(err))
			continue
		}
		if ran {
			resumed++
		}
	}
	return resumed, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, record *model.PaymentRecord) {
	if s.publisher == nil {
		return
	}
	event := &pubsub.PaymentEvent{
		Type:      eventType,
		PaymentID: record.ID,
		UserEmail: record.UserEmail,
		PlanName:  record.PlanName,
		Status:    record.Status,
		Message:   paymentEventMessage(record),
	}
	if err := s.publisher.PublishPaymentEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("payment_id", record.ID), zap.Error(err))
	}
}

func paymentEventMessage(record *model.PaymentRecord) string {
	switch record.Status {
	case model.PaymentApproved:
		return fmt.Sprintf("Your %s plan is now active.", record.PlanName)
	case model.PaymentRejected:
		return fmt.Sprintf("Your payment for the %s plan could not be verified.", record.PlanName)
	default:
		return fmt.Sprintf("We received your payment for the %s plan.", record.PlanName)
	}
}

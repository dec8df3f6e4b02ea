package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kondax-backend/internal/domain"
	"kondax-backend/internal/usecase"
	"kondax-backend/pkg/email"
	"kondax-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type panicSender struct{}

func (panicSender) Send(context.Context, *email.Message) (string, error) {
	panic("boom")
}

var contactCfg = usecase.ContactConfig{
	From:        "noreply@kondax.com",
	OperatorTo:  "ops@kondax.com",
	SendTimeout: time.Second,
}

func TestContactValidate(t *testing.T) {
	uc := usecase.NewContactUsecase(nil, nil, contactCfg, nil)

	t.Run("Should accept a minimal valid submission", func(t *testing.T) {
		sub, err := uc.Validate(&domain.ContactRequest{Name: " Taro ", Email: "t@example.com", Message: "Hi"})
		require.NoError(t, err)
		assert.Equal(t, "Taro", sub.Name)
		assert.Equal(t, "Hi", sub.Message)
	})

	t.Run("Should keep phone as free text", func(t *testing.T) {
		for _, phone := range []string{"０３-１２３４-５６７８", "03-1234-5678 内線12", "090.1234.5678", "未定"} {
			sub, err := uc.Validate(&domain.ContactRequest{Name: "Taro", Email: "t@example.com", Message: "Hi", Phone: " " + phone})
			require.NoError(t, err, phone)
			assert.Equal(t, phone, sub.Phone)
		}
	})

	t.Run("Should cap field lengths", func(t *testing.T) {
		_, err := uc.Validate(&domain.ContactRequest{
			Name:    strings.Repeat("名", 101),
			Email:   "t@example.com",
			Message: strings.Repeat("a", 5001),
		})
		var fields validation.Errors
		require.True(t, errors.As(err, &fields))
		assert.True(t, fields.Has("name"))
		assert.True(t, fields.Has("message"))

		_, err = uc.Validate(&domain.ContactRequest{Name: strings.Repeat("名", 100), Email: "t@example.com", Message: strings.Repeat("a", 5000)})
		assert.NoError(t, err)
	})

	t.Run("Should reject a missing email", func(t *testing.T) {
		_, err := uc.Validate(&domain.ContactRequest{Name: "Taro", Message: "Hi"})
		var fields validation.Errors
		require.True(t, errors.As(err, &fields))
		assert.True(t, fields.Has("email"))
	})

	t.Run("Should reject a malformed email", func(t *testing.T) {
		_, err := uc.Validate(&domain.ContactRequest{Name: "Taro", Email: "not-an-email", Message: "Hi"})
		var fields validation.Errors
		require.True(t, errors.As(err, &fields))
		assert.Equal(t, validation.Errors{{Field: "email", Message: "正しいメールアドレスを入力してください"}}, fields)
	})

	t.Run("Should reject empty name and message in field order", func(t *testing.T) {
		_, err := uc.Validate(&domain.ContactRequest{Name: "", Email: "t@example.com", Message: "   "})
		var fields validation.Errors
		require.True(t, errors.As(err, &fields))
		require.Len(t, fields, 2)
		assert.Equal(t, "name", fields[0].Field)
		assert.Equal(t, "名前を入力してください", fields[0].Message)
		assert.Equal(t, "message", fields[1].Field)
		assert.Equal(t, "メッセージを入力してください", fields[1].Message)
	})

	t.Run("Should reject a nil request", func(t *testing.T) {
		_, err := uc.Validate(nil)
		var fields validation.Errors
		assert.True(t, errors.As(err, &fields))
	})
}

func TestContactDispatch(t *testing.T) {
	sub := &domain.ContactSubmission{Name: "Taro", Email: "t@example.com", Message: "Hi"}

	t.Run("Should send to operator and submitter with default label", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.AnythingOfType("*email.Message")).
			Return("msg_1", nil).
			Run(func(args mock.Arguments) {
				msg := args.Get(1).(*email.Message)
				assert.Equal(t, []string{"ops@kondax.com", "t@example.com"}, msg.To)
				assert.Equal(t, "noreply@kondax.com", msg.From)
				assert.Equal(t, "t@example.com", msg.ReplyTo)
				assert.Contains(t, msg.Subject, "一般的なお問い合わせ")
				assert.Contains(t, msg.HTML, "Taro")

				_, hasDeadline := args.Get(0).(context.Context).Deadline()
				assert.True(t, hasDeadline)
			})

		uc := usecase.NewContactUsecase(sender, nil, contactCfg, nil)
		result := uc.Dispatch(context.Background(), sub)

		assert.Equal(t, domain.DispatchResult{Success: true, ID: "msg_1"}, result)
		sender.AssertExpectations(t)
	})

	t.Run("Should label the subject from the category", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
			return msg.Subject == "[見積もり依頼] お問い合わせを受け付けました。"
		})).Return("", nil)

		uc := usecase.NewContactUsecase(sender, nil, contactCfg, nil)
		estimate := *sub
		estimate.Category = domain.CategoryEstimate
		assert.True(t, uc.Dispatch(context.Background(), &estimate).Success)
		sender.AssertExpectations(t)
	})

	t.Run("Should fold provider rejection into a failed result", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.Anything).
			Return("", &email.ProviderError{StatusCode: 422, Message: "Invalid from"})

		uc := usecase.NewContactUsecase(sender, nil, contactCfg, nil)
		result := uc.Dispatch(context.Background(), sub)

		assert.False(t, result.Success)
		assert.Equal(t, "メール送信に失敗しました。", result.Error)
	})

	t.Run("Should fail cleanly without a sender", func(t *testing.T) {
		uc := usecase.NewContactUsecase(nil, nil, contactCfg, nil)
		result := uc.Dispatch(context.Background(), sub)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("Should recover from a panicking provider", func(t *testing.T) {
		uc := usecase.NewContactUsecase(panicSender{}, nil, contactCfg, nil)
		var result domain.DispatchResult
		assert.NotPanics(t, func() {
			result = uc.Dispatch(context.Background(), sub)
		})
		assert.False(t, result.Success)
	})

	t.Run("Should not duplicate the operator address", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
			return len(msg.To) == 1
		})).Return("", nil)

		uc := usecase.NewContactUsecase(sender, nil, contactCfg, nil)
		self := *sub
		self.Email = "OPS@kondax.com"
		assert.True(t, uc.Dispatch(context.Background(), &self).Success)
	})
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "一般的なお問い合わせ", domain.CategoryLabel(""))
	assert.Equal(t, "一般的なお問い合わせ", domain.CategoryLabel("unknown"))
	assert.Equal(t, "パートナー募集", domain.CategoryLabel("partner"))
	assert.Equal(t, "モニタリング", domain.CategoryLabel("monitor"))
	assert.Equal(t, "その他", domain.CategoryLabel("other"))
	assert.Equal(t, "[その他] お問い合わせを受け付けました。", usecase.Subject("その他"))
}

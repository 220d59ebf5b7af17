package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESAPI struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESAPI) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSAPI struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSAPI) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestSESSender_SendEmail(t *testing.T) {
	api := &MockSESAPI{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "loans@bank.example", awssdk.ToString(params.Source))
			assert.Equal(t, []string{"asha@example.com"}, params.Destination.ToAddresses)
			assert.Equal(t, "Subject", awssdk.ToString(params.Message.Subject.Data))
			assert.Equal(t, "Body", awssdk.ToString(params.Message.Body.Text.Data))
			assert.Nil(t, params.Message.Body.Html)
			return &ses.SendEmailOutput{MessageId: awssdk.String("ses-123")}, nil
		},
	}

	id, err := NewSESSenderWithAPI(api, "loans@bank.example").SendEmail(context.Background(), "asha@example.com", "Subject", "Body")

	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)
}

func TestSESSender_Errors(t *testing.T) {
	api := &MockSESAPI{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	sender := NewSESSenderWithAPI(api, "loans@bank.example")

	_, err := sender.SendEmail(context.Background(), "", "s", "b")
	assert.Error(t, err)

	_, err = sender.SendEmail(context.Background(), "asha@example.com", "s", "b")
	assert.EqualError(t, err, "throttled")
}

func TestSNSSender_SendSMS(t *testing.T) {
	api := &MockSNSAPI{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, "+919800000000", awssdk.ToString(params.PhoneNumber))
			assert.Equal(t, "hello", awssdk.ToString(params.Message))
			assert.Equal(t, "LOANS", awssdk.ToString(params.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
			assert.Equal(t, "Transactional", awssdk.ToString(params.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
			return &sns.PublishOutput{MessageId: awssdk.String("sns-9")}, nil
		},
	}

	id, err := NewSNSSenderWithAPI(api, "LOANS").SendSMS(context.Background(), "+919800000000", "hello")

	require.NoError(t, err)
	assert.Equal(t, "sns-9", id)
}

func TestSNSSender_NoSenderID(t *testing.T) {
	api := &MockSNSAPI{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			_, ok := params.MessageAttributes["AWS.SNS.SMS.SenderID"]
			assert.False(t, ok)
			return &sns.PublishOutput{}, nil
		},
	}

	id, err := NewSNSSenderWithAPI(api, "").SendSMS(context.Background(), "+919800000000", "hello")

	require.NoError(t, err)
	assert.Empty(t, id)
}

// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESSender struct {
	api  SESAPI
	from string
}

func NewSESSender(cfg awssdk.Config, from string) *SESSender {
	return NewSESSenderWithAPI(ses.NewFromConfig(cfg), from)
}

func NewSESSenderWithAPI(api SESAPI, from string) *SESSender {
	return &SESSender{api: api, from: from}
}

// SendEmail sends a plain-text email and returns the SES message id.
func (s *SESSender) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	if to == "" {
		return "", errors.New("ses: empty recipient")
	}
	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject), Charset: awssdk.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(body), Charset: awssdk.String("UTF-8")},
			},
		},
		Source: awssdk.String(s.from),
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}

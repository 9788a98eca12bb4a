package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	got   []*schema.Message
	reply string
	err   error
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChat) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestCompleteImageSendsDataURI(t *testing.T) {
	fc := &fakeChat{reply: "TIPO: VENTA"}
	out, err := NewWithModel(fc).CompleteImage(context.Background(), "PROMPT", []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "TIPO: VENTA", out)

	require.Len(t, fc.got, 1)
	parts := fc.got[0].MultiContent
	require.Len(t, parts, 2)
	assert.Equal(t, "PROMPT", parts[0].Text)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", parts[1].ImageURL.URL)
}

func TestCompleteText(t *testing.T) {
	fc := &fakeChat{reply: "RIESGO: MEDIO"}
	out, err := NewWithModel(fc).CompleteText(context.Background(), "PROMPT", "Simbolo: EURUSD")
	require.NoError(t, err)
	assert.Equal(t, "RIESGO: MEDIO", out)
	assert.Equal(t, "PROMPT\nSimbolo: EURUSD", fc.got[0].Content)

	fc.err = errors.New("rate limited")
	_, err = NewWithModel(fc).CompleteText(context.Background(), "PROMPT", "x")
	assert.ErrorContains(t, err, "rate limited")
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}

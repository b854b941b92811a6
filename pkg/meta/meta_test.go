// Package meta_test contains tests for the meta package.
package meta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/recipebook/pkg/meta"
)

func TestInjectMetaToContext(t *testing.T) {
	tests := []struct {
		name        string
		metaData    map[meta.ContextKey]string
		keyToVerify meta.ContextKey
		valueExpect string
		nilValue    bool
	}{
		{
			name: "inject single value",
			metaData: map[meta.ContextKey]string{
				meta.TraceID: "abc-123",
			},
			keyToVerify: meta.TraceID,
			valueExpect: "abc-123",
		},
		{
			name: "inject multiple values",
			metaData: map[meta.ContextKey]string{
				meta.TraceID:         "trace-123",
				meta.RequestUserID:   "chef",
				meta.RequestUserRole: "USER",
				meta.ServiceName:     "recipebook",
			},
			keyToVerify: meta.RequestUserID,
			valueExpect: "chef",
		},
		{
			name: "skip empty values",
			metaData: map[meta.ContextKey]string{
				meta.TraceID:       "trace-123",
				meta.RequestUserID: "",
			},
			keyToVerify: meta.RequestUserID,
			nilValue:    true,
		},
		{
			name:        "empty map",
			metaData:    map[meta.ContextKey]string{},
			keyToVerify: meta.TraceID,
			nilValue:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(context.Background(), tc.metaData)

			if tc.nilValue {
				assert.Nil(t, ctx.Value(tc.keyToVerify))
			} else {
				assert.Equal(t, tc.valueExpect, ctx.Value(tc.keyToVerify))
			}
		})
	}
}

func TestExtractMetaFromContext(t *testing.T) {
	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{
		meta.TraceID:         "trace-123",
		meta.RequestUserID:   "chef",
		meta.RequestUserRole: "ADMIN",
	})

	extracted := meta.ExtractMetaFromContext(ctx)

	assert.Equal(t, map[meta.ContextKey]string{
		meta.TraceID:         "trace-123",
		meta.RequestUserID:   "chef",
		meta.RequestUserRole: "ADMIN",
	}, extracted)
}

func TestExtractMetaFromContext_IgnoresNonString(t *testing.T) {
	ctx := context.WithValue(context.Background(), meta.TraceID, 12345)
	ctx = context.WithValue(ctx, meta.ServiceName, "recipebook")

	extracted := meta.ExtractMetaFromContext(ctx)

	assert.Equal(t, map[meta.ContextKey]string{
		meta.ServiceName: "recipebook",
	}, extracted)
}

func TestFind(t *testing.T) {
	ctx := context.WithValue(context.Background(), meta.AcceptLanguage, "en")

	assert.Equal(t, "en", meta.Find(ctx, meta.AcceptLanguage))
	assert.Empty(t, meta.Find(ctx, meta.TraceID))
}

func TestTr(t *testing.T) {
	meta.SetLanguageMap(map[string]map[string]string{
		"pt": {"USER_NOT_FOUND": "usuário não encontrado"},
		"en": {"USER_NOT_FOUND": "user not found"},
	}, "pt")

	assert.Equal(t, "user not found", meta.Tr("USER_NOT_FOUND", "en"))
	assert.Equal(t, "usuário não encontrado", meta.Tr("USER_NOT_FOUND", "pt"))

	// Unknown language falls back to the default language.
	assert.Equal(t, "usuário não encontrado", meta.Tr("USER_NOT_FOUND", "fr"))
	// Empty language uses the default language.
	assert.Equal(t, "usuário não encontrado", meta.Tr("USER_NOT_FOUND", ""))
	// Unregistered codes pass through unchanged.
	assert.Equal(t, "SOME_OTHER_CODE", meta.Tr("SOME_OTHER_CODE", "en"))
}

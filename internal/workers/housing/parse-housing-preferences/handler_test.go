// internal/workers/housing/parse-housing-preferences/handler_test.go
package parsehousingpreferences

import (
	"context"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "homematch-workers/internal/common/errors"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/common/validation"
	"homematch-workers/internal/models"
	"homematch-workers/pkg/registry"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return NewHandler(LoadConfig(), validation.NewValidator(reg), nil, logger.NewTestLogger(t))
}

func job(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: variables, Retries: 1}}
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		raw            map[string]interface{}
		expectedActive bool
		validate       func(t *testing.T, p models.PreferenceSet)
	}{
		{
			name:           "reset state",
			raw:            map[string]interface{}{},
			expectedActive: false,
			validate: func(t *testing.T, p models.PreferenceSet) {
				assert.Equal(t, models.DefaultPreferences(), p)
			},
		},
		{
			name:           "faculty and vibes",
			raw:            map[string]interface{}{"faculty": "FASS(Arts)", "vibes": []interface{}{"Performing Arts"}},
			expectedActive: true,
			validate: func(t *testing.T, p models.PreferenceSet) {
				assert.Equal(t, "FASS(Arts)", p.Faculty)
				assert.Equal(t, []string{"Performing Arts"}, p.Vibes)
			},
		},
		{
			name:           "low budget only",
			raw:            map[string]interface{}{"budget": 150.0},
			expectedActive: true,
			validate: func(t *testing.T, p models.PreferenceSet) {
				assert.Equal(t, 150.0, p.Budget)
			},
		},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{RawPreferences: tt.raw})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedActive, out.FiltersActive)
			tt.validate(t, out.Preferences)
		})
	}
}

func TestHandler_Execute_InvalidPreferences(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{RawPreferences: map[string]interface{}{"vibes": "Nightlife"}})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))

	_, err = h.Execute(context.Background(), nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))
}

func TestHandler_Decode(t *testing.T) {
	h := createTestHandler(t)

	t.Run("valid variables", func(t *testing.T) {
		input, err := h.decode(job(`{"rawPreferences":{"budget":200,"needsAirCon":true}}`))
		require.NoError(t, err)
		assert.Equal(t, 200.0, input.RawPreferences["budget"])
	})

	t.Run("lowercase room decodes and parses", func(t *testing.T) {
		input, err := h.decode(job(`{"rawPreferences":{"roomPreference":"single"}}`))
		require.NoError(t, err)
		out, err := h.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "Single", out.Preferences.RoomPreference)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := h.decode(job(`{"rawPreferences":{"roomPreference":"Loft"}}`))
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := h.decode(job(`{"rawPreferences":`))
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeParseError))
	})
}

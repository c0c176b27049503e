package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleInput struct {
	Date string `validate:"required,dateonly"`
	Time string `validate:"required,timehhmm"`
}

func TestScheduleValidations(t *testing.T) {
	cv := NewValidator()

	assert.NoError(t, cv.Validate(&scheduleInput{Date: "2026-04-01", Time: "09:30"}))

	err := cv.Validate(&scheduleInput{Date: "01/04/2026", Time: "09:30"})
	require.Error(t, err)
	msgs := cv.FormatValidationErrors(err)
	assert.Contains(t, msgs["Date"], "YYYY-MM-DD")

	err = cv.Validate(&scheduleInput{Date: "2026-04-01", Time: "9:30 AM"})
	require.Error(t, err)
	msgs = cv.FormatValidationErrors(err)
	assert.Contains(t, msgs["Time"], "HH:MM")

	err = cv.Validate(&scheduleInput{})
	require.Error(t, err)
	msgs = cv.FormatValidationErrors(err)
	assert.Contains(t, msgs["Date"], "required")
}

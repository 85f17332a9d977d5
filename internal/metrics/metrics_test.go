// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordHelpers_DoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordFileAnalyzed()
		RecordParseError()
		RecordResolverTimeout()
		RecordRuleQuarantine()
		RecordSeedSwap()
		RecordWatchEvent()
		RecordQueryExecution(nil)
		RecordQueryExecution(assert.AnError)
		ObserveRuleApplyDuration(0.01)
		ObserveQueryDuration(0.02)
		ObserveAnalysisDuration(1.5)
	})
}

func TestHandler_ReturnsNonNilHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}

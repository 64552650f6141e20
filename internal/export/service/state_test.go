/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/export/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func baseChange() model.PendingChange {
	return model.PendingChange{
		ChangeID:      "chg-1",
		ObjectID:      "cso-1",
		SystemID:      "crm",
		AttributeName: "email",
		Value:         attribute.StringValue("bob@corp.example"),
		Status:        model.StatusPending,
	}
}

func TestMarkDelivered(t *testing.T) {
	ch := baseChange()
	MarkDelivered(&ch, false, now)
	assert.Equal(t, model.StatusExported, ch.Status)
	assert.Equal(t, 1, ch.AttemptCount)
	require.NotNil(t, ch.LastExportedAt)
	assert.Equal(t, now, *ch.LastExportedAt)
}

func TestMarkDelivered_AutoConfirmSkipsConfirmation(t *testing.T) {
	ch := baseChange()
	MarkDelivered(&ch, true, now)
	assert.Equal(t, model.StatusConfirmed, ch.Status)
}

func TestMarkDelivered_DeleteRequestConfirmsWithoutAutoConfirm(t *testing.T) {
	ch := baseChange()
	ch.AttributeName = ""
	ch.Value = attribute.Value{}
	ch.DeleteRequest = true

	MarkDelivered(&ch, false, now)
	assert.Equal(t, model.StatusConfirmed, ch.Status,
		"a delete request has no value to confirm on import and must not linger as Exported")
}

func TestMarkFailed_AbandonsAtMaxAttempts(t *testing.T) {
	ch := baseChange()
	const maxAttempts = 3

	for i := 0; i < maxAttempts; i++ {
		MarkFailed(&ch, maxAttempts, now)
		if i < maxAttempts-1 {
			assert.Equal(t, model.StatusFailed, ch.Status)
			assert.True(t, Requeue(&ch, now))
			assert.Equal(t, model.StatusPending, ch.Status)
		}
	}

	assert.Equal(t, model.StatusAbandoned, ch.Status)
	assert.Equal(t, maxAttempts, ch.AttemptCount)
	assert.False(t, Requeue(&ch, now), "abandoned changes are excluded from automatic retry")
}

func TestConfirmOnImport_MatchingValueConfirms(t *testing.T) {
	ch := baseChange()
	MarkDelivered(&ch, false, now)

	confirmed := ConfirmOnImport(&ch, attribute.StringValue("bob@corp.example"), now.Add(time.Minute))
	assert.True(t, confirmed)
	assert.Equal(t, model.StatusConfirmed, ch.Status)
	require.NotNil(t, ch.LastImportedValue)
}

func TestConfirmOnImport_MismatchStaysExported(t *testing.T) {
	ch := baseChange()
	MarkDelivered(&ch, false, now)

	confirmed := ConfirmOnImport(&ch, attribute.StringValue("someone-else@corp.example"), now.Add(time.Minute))
	assert.False(t, confirmed)
	assert.Equal(t, model.StatusExported, ch.Status,
		"change remains Exported indefinitely until a matching value is imported")
	require.NotNil(t, ch.LastImportedValue, "imported value is recorded for audit regardless of match")
	assert.Equal(t, "someone-else@corp.example", ch.LastImportedValue.Str)
}

func TestConfirmOnImport_IgnoredForNonExportedStates(t *testing.T) {
	ch := baseChange()
	confirmed := ConfirmOnImport(&ch, attribute.StringValue("bob@corp.example"), now)
	assert.False(t, confirmed)
	assert.Equal(t, model.StatusPending, ch.Status)
	assert.Nil(t, ch.LastImportedValue)
}

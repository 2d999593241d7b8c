package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "status", "data", "encrypted_data", "application_date", "submitted_at", "updated_at"}

const draftDoc = `{"application":{"buildingAddress":"1 Liberty Place","monthlyRent":2500},"applicant":{"name":"Jane Doe","email":"Jane@Example.com","income":85000}}`

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, internal.NewTestLogger(t)), mock
}

func TestCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO rental_applications`)).
		WithArgs(StatusDraft, "1 Liberty Place", "Jane Doe", "jane@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, StatusDraft, []byte(draftDoc), nil, now, nil, now))

	app, err := store.Create(context.Background(), json.RawMessage(draftDoc))
	require.NoError(t, err)
	assert.Equal(t, int64(7), app.ID)
	assert.Equal(t, StatusDraft, app.Status)
	assert.Nil(t, app.SubmittedAt)
	assert.Nil(t, app.EncryptedData)

	b, err := app.Bundle()
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", b.Applicant.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM rental_applications WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeApplicationNotFound, apperrors.CodeOf(err))
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestGetStorageFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))

	_, err := store.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStorageFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, StatusDraft, []byte(`{}`), nil, now, nil, now).
			AddRow(2, StatusSubmitted, []byte(`{}`), []byte(`{"documents":{}}`), now, now, now))

	apps, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Nil(t, apps[0].SubmittedAt)
	require.NotNil(t, apps[1].SubmittedAt)
	assert.JSONEq(t, `{"documents":{}}`, string(apps[1].EncryptedData))
}

func TestListEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows(columns))

	apps, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

// mergedDoc matches a JSON document argument by content.
type mergedDoc struct {
	want string
}

func (m mergedDoc) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var got, want any
	if json.Unmarshal(raw, &got) != nil || json.Unmarshal([]byte(m.want), &want) != nil {
		return false
	}
	return assert.ObjectsAreEqual(want, got)
}

func TestUpdateMergesPatch(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM rental_applications WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(draftDoc)))

	merged := mergedDoc{want: `{"application":{"buildingAddress":"1 Liberty Place","monthlyRent":2500},"applicant":{"name":"Jane Smith","email":"Jane@Example.com","income":85000}}`}
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE rental_applications`)).
		WithArgs(int64(7), merged, "1 Liberty Place", "Jane Smith", "jane@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, StatusDraft, []byte(`{}`), nil, now, nil, now))
	mock.ExpectCommit()

	_, err := store.Update(context.Background(), 7, json.RawMessage(`{"applicant":{"name":"Jane Smith","phone":null}}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotFoundRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data`).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.Update(context.Background(), 3, json.RawMessage(`{"status":"x"}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeApplicationNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsMalformedPatch(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data`).WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(draftDoc)))
	mock.ExpectRollback()

	_, err := store.Update(context.Background(), 7, json.RawMessage(`[1,2]`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SET status = $2, submitted_at = now()`)).
		WithArgs(int64(7), StatusSubmitted).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, StatusSubmitted, []byte(draftDoc), nil, now, now, now))

	app, err := store.Submit(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, app.Status)
	require.NotNil(t, app.SubmittedAt)
}

func TestSubmitNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE`).WillReturnError(sql.ErrNoRows)

	_, err := store.Submit(context.Background(), 8)
	assert.Equal(t, apperrors.ErrCodeApplicationNotFound, apperrors.CodeOf(err))
}

func TestAttachEncryptedData(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`SET encrypted_data = $2`)).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET encrypted_data`).
		WithArgs(int64(8), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.AttachEncryptedData(context.Background(), 7, json.RawMessage(`{}`)))
	err := store.AttachEncryptedData(context.Background(), 8, json.RawMessage(`{}`))
	assert.Equal(t, apperrors.ErrCodeApplicationNotFound, apperrors.CodeOf(err))
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS rental_applications`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergePatch(t *testing.T) {
	merged, err := mergePatch(
		json.RawMessage(`{"a":{"b":1,"c":[1,2]},"d":"keep"}`),
		json.RawMessage(`{"a":{"c":[3],"e":true},"d":null,"f":{"g":"new"}}`),
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":1,"c":[3],"e":true},"d":"keep","f":{"g":"new"}}`, string(merged))
}

func TestMergePatchEmptyDocument(t *testing.T) {
	merged, err := mergePatch(nil, json.RawMessage(`{"status":"draft"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"draft"}`, string(merged))
}

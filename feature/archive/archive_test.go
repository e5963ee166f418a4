package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"tversky-reconcile/core/reconcile"
	"tversky-reconcile/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleReport() *reconcile.Report {
	return &reconcile.Report{
		RunID:      "run-1",
		Identifier: "pilot",
		HITID:      "HIT1",
		Submitted:  2,
		Verified:   []int64{1, 2},
		Warnings:   []reconcile.Warning{},
		Committed:  true,
		Started:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestArchiver_Key(t *testing.T) {
	a := NewArchiver(nil, "tversky", Config{Prefix: "/reports/"}, nil)

	assert.Equal(t, "reports/HIT1/2024-03-01T12:00:00Z-run-1.json", a.Key(sampleReport()))

	r := sampleReport()
	r.HITID = ""
	assert.Equal(t, "reports/unresolved/2024-03-01T12:00:00Z-run-1.json", a.Key(r))
}

func TestArchiver_Archive(t *testing.T) {
	client := new(mocks.Client)
	ctx := context.Background()
	key := "reconcile-reports/HIT1/2024-03-01T12:00:00Z-run-1.json"

	client.On("BucketExists", ctx, "tversky").Return(true, nil)
	client.On("PutObject", ctx, "tversky", key, mock.Anything, mock.AnythingOfType("int64"), mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), args.Get(4).(int64))
			assert.Equal(t, "application/json", args.Get(5).(minio.PutObjectOptions).ContentType)

			var got reconcile.Report
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, []int64{1, 2}, got.Verified)
			assert.True(t, got.Committed)
		}).
		Return(minio.UploadInfo{}, nil)

	a := NewArchiver(client, "tversky", Config{Prefix: "reconcile-reports"}, nil)
	got, err := a.Archive(ctx, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, key, got)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiver_CreatesBucket(t *testing.T) {
	client := new(mocks.Client)
	ctx := context.Background()

	client.On("BucketExists", ctx, "tversky").Return(false, nil)
	client.On("MakeBucket", ctx, "tversky", minio.MakeBucketOptions{}).Return(nil)
	client.On("PutObject", ctx, "tversky", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	_, err := NewArchiver(client, "tversky", Config{Prefix: "r"}, nil).Archive(ctx, sampleReport())
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestArchiver_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewArchiver(new(mocks.Client), "tversky", Config{}, nil).Archive(ctx, nil)
	assert.Error(t, err)

	client := new(mocks.Client)
	client.On("BucketExists", ctx, "tversky").Return(false, errors.New("unreachable"))
	_, err = NewArchiver(client, "tversky", Config{}, nil).Archive(ctx, sampleReport())
	assert.ErrorContains(t, err, "failed to check bucket tversky: unreachable")

	client = new(mocks.Client)
	client.On("BucketExists", ctx, "tversky").Return(true, nil)
	client.On("PutObject", ctx, "tversky", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))
	_, err = NewArchiver(client, "tversky", Config{}, nil).Archive(ctx, sampleReport())
	assert.ErrorContains(t, err, "quota exceeded")
}

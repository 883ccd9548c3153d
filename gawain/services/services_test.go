package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/repositories"
	"github.com/sergawain/gawain/internal/gateways/database/sqlitetest"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type fakeObjects struct {
	puts  map[string][]byte
	pages [][]string
	err   error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := 0
	if in.ContinuationToken != nil {
		page = 1
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(page+1 < len(f.pages))}
	for _, k := range f.pages[page] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if aws.ToBool(out.IsTruncated) {
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func TestPutJSONUsesPrefix(t *testing.T) {
	fake := &fakeObjects{}
	svc := newSpacesService(fake, "ams3", "bucket", "/backups/")

	key, err := svc.PutJSON(context.Background(), "a.json", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, "backups/a.json", key)
	require.Equal(t, []byte(`{}`), fake.puts["backups/a.json"])
	require.Equal(t, "https://bucket.ams3.digitaloceanspaces.com/backups/a.json", svc.ObjectURL(key))

	fake.err = errors.New("denied")
	_, err = svc.PutJSON(context.Background(), "b.json", nil)
	require.ErrorContains(t, err, "denied")
}

func TestListBackupsFollowsPages(t *testing.T) {
	fake := &fakeObjects{pages: [][]string{{"backups/1.json"}, {"backups/2.json"}}}
	svc := newSpacesService(fake, "ams3", "bucket", "backups")

	keys, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"backups/1.json", "backups/2.json"}, keys)
}

func TestBackupRun(t *testing.T) {
	ctx := context.Background()
	db := sqlitetest.Open(t)
	svc := crafting.NewService(repositories.NewStore(db))

	alice := crafting.Actor{ID: "1", Name: "alice"}
	bob := crafting.Actor{ID: "2", Name: "bob"}
	view, err := svc.Create(ctx, alice, crafting.CreateParams{Item: "Bread"})
	require.NoError(t, err)
	_, err = svc.Accept(ctx, bob, view.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SetSkill(ctx, bob, "Cooking", 40))

	fake := &fakeObjects{}
	backup := NewBackupService(db, newSpacesService(fake, "ams3", "bucket", "backups"))
	backup.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	key, snap, err := backup.Run(ctx)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "backups/gawain-20240506T070809Z-"), key)
	_, err = uuid.Parse(snap.RunID)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(fake.puts[key], &decoded))
	require.Equal(t, snap.RunID, decoded.RunID)
	require.Len(t, decoded.Accounts, 2)
	require.Len(t, decoded.Skills, 1)
	require.Len(t, decoded.Requests, 1)
	require.Equal(t, "2", *decoded.Requests[0].AcceptedBy)
}

type txOptionsDB struct {
	bun.IDB
	opts []*sql.TxOptions
}

func (d *txOptionsDB) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	d.opts = append(d.opts, opts)
	return d.IDB.RunInTx(ctx, opts, f)
}

func TestSnapshotUsesRepeatableReadTx(t *testing.T) {
	db := &txOptionsDB{IDB: sqlitetest.Open(t)}
	backup := NewBackupService(db, newSpacesService(&fakeObjects{}, "ams3", "bucket", "backups"))

	snap, err := backup.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.Requests)

	require.Len(t, db.opts, 1)
	require.NotNil(t, db.opts[0])
	require.Equal(t, sql.LevelRepeatableRead, db.opts[0].Isolation)
	require.True(t, db.opts[0].ReadOnly)
}

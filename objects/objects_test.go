/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package objects

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/datastore/mock"
	"github.com/dbanda/MediaCrush/errors"
	"github.com/dbanda/MediaCrush/flags"
	"github.com/dbanda/MediaCrush/jobs"
	"github.com/dbanda/MediaCrush/registry"
)

var testCatalog = flags.Catalog{
	"video": {{Name: "autoplay", Default: true}, {Name: "loop", Default: true}, {Name: "mute"}},
	"image": {{Name: "nsfw"}},
}

type fixture struct {
	backend *mock.DataStore
	store   *mediacrush.Store
	tracker *jobs.StaticTracker
	repo    *Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := mock.New()
	reg := registry.New(backend, "mc")
	Register(reg, testCatalog)
	store := mediacrush.NewStore(reg)
	tracker := jobs.NewStaticTracker()
	return &fixture{
		backend: backend,
		store:   store,
		tracker: tracker,
		repo:    NewRepository(store, tracker),
	}
}

func strPtr(s string) *string { return &s }

func (fx *fixture) saveFile(t *testing.T) *File {
	t.Helper()
	f := NewFile(testCatalog)
	f.Original = strPtr("original.mp4")
	require.NoError(t, fx.store.Save(context.Background(), f))
	return f
}

func TestRegisterTags(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, []string{"album", "failedfile", "feedback", "file"}, fx.store.Registry().Tags())
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	f := NewFile(testCatalog)
	f.Original = strPtr("a.gif")
	f.Mimetype = strPtr("image/gif")
	f.Compression = 2.5
	f.IP = strPtr("127.0.0.1")
	f.TaskID = strPtr("job-1")
	f.Title = strPtr("None")
	f.TextLocked = true
	f.SetConfigVector(0b101)
	f.SetProcessor("video/h264")
	require.NoError(t, fx.store.Save(ctx, f))

	stored := fx.backend.Hash("mc.file." + f.Identifier())
	assert.Equal(t, "video/h264", stored["processor"])
	assert.Equal(t, "5", stored["configvector"])
	assert.Equal(t, "True", stored["text_locked"])
	assert.Equal(t, "None", stored["metadata"])
	assert.Equal(t, "2.5", stored["compression"])
	assert.Equal(t, f.Identifier(), stored["hash"])

	loaded, err := mediacrush.Load[*File](ctx, fx.store, f.Identifier())
	require.NoError(t, err)
	assert.Equal(t, "a.gif", *loaded.Original)
	assert.Equal(t, 2.5, loaded.Compression)
	assert.True(t, loaded.TextLocked)
	assert.Nil(t, loaded.Metadata)
	// lossy sentinel
	assert.Equal(t, "None", *f.Title)
	assert.Nil(t, loaded.Title)

	assert.Equal(t, "video/h264", loaded.Processor())
	assert.Equal(t, int64(5), loaded.ConfigVector())
	assert.Equal(t, map[string]bool{"autoplay": true, "loop": false, "mute": true}, loaded.Flags().Map())
}

func TestFileFlagsIndependentOfFieldOrder(t *testing.T) {
	a := NewFile(testCatalog)
	a.SetProcessor("video")
	a.SetConfigVector(0b010)

	b := NewFile(testCatalog)
	b.SetConfigVector(0b010)
	b.SetProcessor("video")

	assert.Equal(t, a.Flags().Map(), b.Flags().Map())
	assert.Equal(t, int64(2), a.ConfigVector())
	assert.Equal(t, int64(2), b.ConfigVector())
}

func TestFileFlagEditsSurviveProcessorChange(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	f := NewFile(testCatalog)
	f.SetProcessor("video")
	require.NoError(t, f.Flags().Set("mute", true))
	require.Equal(t, int64(0b100), f.ConfigVector())

	f.SetProcessor("video/h264")
	v, ok := f.Flags().Get("mute")
	require.True(t, ok)
	assert.True(t, v)
	assert.Equal(t, int64(0b100), f.ConfigVector())

	require.NoError(t, fx.store.Save(ctx, f))
	assert.Equal(t, "4", fx.backend.Hash("mc.file." + f.Identifier())["configvector"])

	loaded, err := mediacrush.Load[*File](ctx, fx.store, f.Identifier())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"autoplay": false, "loop": false, "mute": true}, loaded.Flags().Map())
}

func TestFileConfigVectorWithoutProcessor(t *testing.T) {
	f := NewFile(testCatalog)
	f.SetConfigVector(7)
	assert.Equal(t, int64(0), f.ConfigVector())
	assert.Nil(t, f.Flags())

	f.SetProcessor("image")
	assert.Equal(t, int64(7), f.ConfigVector())
	v, ok := f.Flags().Get("nsfw")
	assert.True(t, ok)
	assert.True(t, v)
}

func TestFileValidate(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		mime    string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"ipv4", "10.1.2.3", "video/mp4", false},
		{"ipv6", "2001:db8::1", "image/png", false},
		{"bad ip", "10.1.2", "", true},
		{"bad mimetype", "", "video", true},
		{"nested mimetype", "", "video/mp4/x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFile(nil)
			f.IP = strPtr(tt.ip)
			f.Mimetype = strPtr(tt.mime)
			err := f.Validate()
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRejectsInvalidFile(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	f := NewFile(testCatalog)
	f.IP = strPtr("10.1.2")
	err := fx.store.Save(ctx, f)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, fx.backend.Count())

	f.IP = strPtr("10.1.2.3")
	f.Mimetype = strPtr("video")
	assert.True(t, errors.IsValidationError(fx.store.Save(ctx, f)))
	assert.Equal(t, 0, fx.backend.Count())

	f.Mimetype = strPtr("video/mp4")
	require.NoError(t, fx.store.Save(ctx, f))
	assert.Equal(t, "10.1.2.3", fx.backend.Hash("mc.file." + f.Identifier())["ip"])
}

func TestDiscoveredTypes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	fb := &Feedback{Text: "love it", UserAgent: "curl/8"}
	require.NoError(t, fx.store.Save(ctx, fb))
	assert.Equal(t, map[string]string{"hash": fb.Identifier(), "text": "love it", "useragent": "curl/8"},
		fx.backend.Hash("mc.feedback."+fb.Identifier()))

	ff := &FailedFile{Status: "timeout"}
	require.NoError(t, fx.store.Save(ctx, ff))

	loaded, err := fx.store.Load(ctx, ff.Identifier(), registry.AnyType)
	require.NoError(t, err)
	assert.Equal(t, ff, loaded)
}

func TestAlbumItemsPrunesDeadReferences(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	live := fx.saveFile(t)
	album := &Album{Items: []string{"gone1", live.Identifier(), "gone2"}, Title: strPtr("trip")}
	require.NoError(t, fx.store.Save(ctx, album))

	files, err := fx.repo.Items(ctx, album)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, live.Identifier(), files[0].Identifier())

	assert.Equal(t, live.Identifier(), fx.backend.Hash("mc.album." + album.Identifier())["_items"])
	reloaded, err := mediacrush.Load[*Album](ctx, fx.store, album.Identifier())
	require.NoError(t, err)
	assert.Equal(t, []string{live.Identifier()}, reloaded.Items)
	assert.Equal(t, "trip", *reloaded.Title)
}

func TestAlbumItemsDeletesEmptyAlbum(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	album := &Album{Items: []string{"gone1", "gone2", "gone3"}}
	require.NoError(t, fx.store.Save(ctx, album))

	files, err := fx.repo.Items(ctx, album)
	require.NoError(t, err)
	assert.Empty(t, files)

	ok, err := fx.store.ExistsAs(ctx, album.Identifier(), "album")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, fx.backend.Hash("mc.album."+album.Identifier()))
}

func TestAlbumItemsWithoutDeadReferencesDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	a, b := fx.saveFile(t), fx.saveFile(t)
	album := &Album{Items: []string{b.Identifier(), a.Identifier()}}
	require.NoError(t, fx.store.Save(ctx, album))
	writes := fx.backend.Calls(mock.OpHSet)

	files, err := fx.repo.Items(ctx, album)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, b.Identifier(), files[0].Identifier())
	assert.Equal(t, writes, fx.backend.Calls(mock.OpHSet))
}

func TestAlbumItemsIgnoresOtherTypes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	fb := &Feedback{Text: "not a file"}
	require.NoError(t, fx.store.Save(ctx, fb))
	live := fx.saveFile(t)

	album := &Album{Items: []string{fb.Identifier(), live.Identifier()}}
	files, err := fx.repo.Items(ctx, album)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, []string{live.Identifier()}, album.Items)
}

func TestAlbumItemsBackendError(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	album := &Album{Items: []string{"x"}}
	fx.backend.WithError(mock.OpHGetAll, assert.AnError)
	_, err := fx.repo.Items(ctx, album)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		result jobs.Result
		want   string
	}{
		{"pending", jobs.Result{State: jobs.StatePending}, StatusPending},
		{"started", jobs.Result{State: jobs.StateStarted}, StatusProcessing},
		{"ready", jobs.Result{State: jobs.StateReady}, StatusReady},
		{"processing failure", jobs.Result{State: jobs.StateFailure, Traceback: "raise ProcessingException()"}, StatusError},
		{"timeout", jobs.Result{State: jobs.StateFailure, Traceback: "TimeoutException: 60s"}, StatusTimeout},
		{"unrecognised", jobs.Result{State: jobs.StateFailure, Traceback: "UnrecognisedFormatException"}, StatusUnrecognised},
		{"other failure", jobs.Result{State: jobs.StateFailure, Traceback: "KeyError"}, StatusInternalError},
		{"unknown state", jobs.Result{State: "REVOKED"}, StatusInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fx := newFixture(t)
			f := NewFile(testCatalog)
			f.TaskID = strPtr("job")
			require.NoError(t, fx.store.Save(ctx, f))
			fx.tracker.Set("job", tt.result)

			got, err := fx.repo.Status(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "job", *f.TaskID)
		})
	}
}

func TestStatusDoneWritesBackOnce(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	f := NewFile(testCatalog)
	f.TaskID = strPtr("job-42")
	require.NoError(t, fx.store.Save(ctx, f))
	fx.tracker.Set("job-42", jobs.Result{State: jobs.StateSuccess})

	status, err := fx.repo.Status(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)
	assert.Equal(t, TaskDone, fx.backend.Hash("mc.file." + f.Identifier())["taskid"])

	reloaded, err := mediacrush.Load[*File](ctx, fx.store, f.Identifier())
	require.NoError(t, err)
	status, err = fx.repo.Status(ctx, reloaded)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)
	assert.Equal(t, 1, fx.tracker.Calls())
}

func TestStatusWithoutJob(t *testing.T) {
	fx := newFixture(t)
	status, err := fx.repo.Status(context.Background(), NewFile(nil))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
	assert.Equal(t, 0, fx.tracker.Calls())
}

func TestAddReport(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := fx.saveFile(t)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.repo.AddReport(ctx, &File{Base: f.Base})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reloaded, err := mediacrush.Load[*File](ctx, fx.store, f.Identifier())
	require.NoError(t, err)
	assert.Equal(t, int64(n), reloaded.Reports)

	flagged, err := fx.store.Flagged(ctx)
	require.NoError(t, err)
	sort.Strings(flagged)
	assert.Equal(t, []string{f.Identifier()}, flagged)
}

func TestAddReportMissingFile(t *testing.T) {
	fx := newFixture(t)
	f := NewFile(nil)
	f.SetIdentifier("nope")
	_, err := fx.repo.AddReport(context.Background(), f)
	assert.True(t, errors.IsNotFound(err))

	flagged, _ := fx.store.Flagged(context.Background())
	assert.Empty(t, flagged)
}

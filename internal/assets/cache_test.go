package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"legaltrack/internal/assets/blobs"
)

const docURL = "https://kad.arbitr.ru/Document/Pdf/c1/d1?isAddStamp=True"

var validPDF = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF")

type fakeDownloader struct {
	calls   atomic.Int32
	release chan struct{}
	result  Download
	err     error
}

func (f *fakeDownloader) Download(ctx context.Context, _ string) (Download, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return Download{}, ctx.Err()
		}
	}
	return f.result, f.err
}

type CacheSuite struct {
	suite.Suite
	ctx   context.Context
	blobs *blobs.Memory
	dl    *fakeDownloader
	cache *Cache
	key   Key
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.blobs = blobs.NewMemory()
	s.dl = &fakeDownloader{result: Download{Body: validPDF, ContentType: "application/pdf"}}
	s.key = Key{CaseID: 77, DocumentID: "doc-1"}

	c, err := New(s.blobs, s.dl, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.cache = c
}

func (s *CacheSuite) TestDownloadsOnceThenServesFromCache() {
	h, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.Require().NoError(err)
	s.Equal(SourceDownload, h.Source)
	s.Equal(FileName(s.key, docURL), h.Name)
	s.Equal(int64(len(validPDF)), h.Size)

	again, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.Require().NoError(err)
	s.Equal(SourceCache, again.Source)
	s.Equal(int32(1), s.dl.calls.Load())

	rc, err := s.cache.Open(s.ctx, again)
	s.Require().NoError(err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal(validPDF, body)
}

func (s *CacheSuite) TestRejectedDownloadIsNotCached() {
	s.dl.result = Download{Body: []byte("<!DOCTYPE html><html>captcha</html>"), ContentType: "text/html"}

	_, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.ErrorIs(err, ErrValidationFailed)
	s.Equal(ReasonLooksLikeHTML, ReasonOf(err))

	_, statErr := s.blobs.Stat(s.ctx, FileName(s.key, docURL))
	s.ErrorIs(statErr, blobs.ErrNotFound)
}

func (s *CacheSuite) TestDownloadErrorIsWrapped() {
	boom := errors.New("connection reset")
	s.dl.err = boom

	_, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.ErrorIs(err, boom)
}

func (s *CacheSuite) TestEmptyCachedFileIsReplaced() {
	s.Require().NoError(s.blobs.Write(s.ctx, FileName(s.key, docURL), nil))

	h, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.Require().NoError(err)
	s.Equal(SourceDownload, h.Source)
	s.Equal(int32(1), s.dl.calls.Load())
}

func (s *CacheSuite) TestLegacyEntryIsMigratedWithoutDownload() {
	s.Require().NoError(s.blobs.Write(s.ctx, LegacyFileName(s.key), validPDF))

	h, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.Require().NoError(err)
	s.Equal(SourceLegacy, h.Source)
	s.Equal(FileName(s.key, docURL), h.Name)
	s.Zero(s.dl.calls.Load())

	_, err = s.blobs.Stat(s.ctx, LegacyFileName(s.key))
	s.ErrorIs(err, blobs.ErrNotFound)
}

func (s *CacheSuite) TestConcurrentCallersShareOneDownload() {
	s.dl.release = make(chan struct{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
			s.NoError(err)
		}()
	}
	s.Eventually(func() bool { return s.dl.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(s.dl.release)
	wg.Wait()

	s.Equal(int32(1), s.dl.calls.Load())
}

func (s *CacheSuite) TestMissingURL() {
	_, err := s.cache.FetchOrDownload(s.ctx, s.key, "  ")
	s.ErrorIs(err, ErrNoURL)
}

func (s *CacheSuite) TestLookupIgnoresDocumentsWithExtendedIDs() {
	key := Key{CaseID: 1, DocumentID: "doc"}
	_, err := s.cache.FetchOrDownload(s.ctx, Key{CaseID: 1, DocumentID: "doc_x"}, docURL)
	s.Require().NoError(err)
	s.Require().NoError(s.blobs.Write(s.ctx, LegacyFileName(Key{CaseID: 1, DocumentID: "doc_y"}), validPDF))

	_, ok, err := s.cache.Lookup(s.ctx, key)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.cache.FetchOrDownload(s.ctx, key, docURL)
	s.Require().NoError(err)
	h, ok, err := s.cache.Lookup(s.ctx, key)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(FileName(key, docURL), h.Name)
	s.Equal(int32(2), s.dl.calls.Load())
}

func (s *CacheSuite) TestLookupCachedSizeClear() {
	other := Key{CaseID: 78, DocumentID: "doc-9"}
	_, err := s.cache.FetchOrDownload(s.ctx, s.key, docURL)
	s.Require().NoError(err)
	_, err = s.cache.FetchOrDownload(s.ctx, Key{CaseID: 77, DocumentID: "doc-2"}, docURL)
	s.Require().NoError(err)
	s.Require().NoError(s.blobs.Write(s.ctx, LegacyFileName(other), validPDF))

	s.Run("lookup current name", func() {
		h, ok, err := s.cache.Lookup(s.ctx, s.key)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(FileName(s.key, docURL), h.Name)
	})

	s.Run("lookup legacy name", func() {
		h, ok, err := s.cache.Lookup(s.ctx, other)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(SourceLegacy, h.Source)
	})

	s.Run("lookup miss", func() {
		_, ok, err := s.cache.Lookup(s.ctx, Key{CaseID: 1, DocumentID: "none"})
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("cached per case", func() {
		hs, err := s.cache.Cached(s.ctx, 77)
		s.Require().NoError(err)
		s.Len(hs, 2)
	})

	s.Run("size and clear", func() {
		size, err := s.cache.Size(s.ctx)
		s.Require().NoError(err)
		s.Equal(int64(3*len(validPDF)), size)

		s.Require().NoError(s.cache.Clear(s.ctx))
		size, err = s.cache.Size(s.ctx)
		s.Require().NoError(err)
		s.Zero(size)
	})
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, &fakeDownloader{})
	assert.EqualError(t, err, "blob store is required")

	_, err = New(blobs.NewMemory(), nil)
	assert.EqualError(t, err, "downloader is required")
}

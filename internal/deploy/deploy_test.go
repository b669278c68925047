package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/service"
)

type fakePublisher struct {
	calls atomic.Int32
	got   string
	url   string
	err   error
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) Publish(_ context.Context, html string) (string, error) {
	f.calls.Add(1)
	f.got = html
	return f.url, f.err
}

// seed creates a project with v1 (completed) and v2 (active, still empty).
func seed(t *testing.T) (*service.ProjectService, *domain.ProjectVersion, *domain.ProjectVersion) {
	t.Helper()
	ctx := context.Background()
	svc := service.NewProjectService(repository.NewMemoryRepository())

	view, err := svc.CreateProject(ctx, "p1", "a bakery site")
	require.NoError(t, err)
	v1, err := svc.UpdateVersion(ctx, view.ActiveVersion.ID, domain.Completed("<html>v1</html>"))
	require.NoError(t, err)
	v2, err := svc.CreateRevision(ctx, "p1", "more", v1.ID)
	require.NoError(t, err)
	return svc, v1, v2
}

func TestDeployer_Deploy(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit version", func(t *testing.T) {
		svc, v1, _ := seed(t)
		pub := &fakePublisher{url: "https://sites.example/abc"}

		dep, err := NewDeployer(svc, pub, nil).Deploy(ctx, "p1", v1.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://sites.example/abc", dep.URL)
		assert.Equal(t, 1, dep.VersionNumber)
		assert.Equal(t, "<html>v1</html>", pub.got)
		assert.Equal(t, int32(1), pub.calls.Load())
	})

	t.Run("active version without content fails before publishing", func(t *testing.T) {
		svc, _, _ := seed(t)
		pub := &fakePublisher{url: "x"}

		_, err := NewDeployer(svc, pub, nil).Deploy(ctx, "p1", "")
		assert.ErrorIs(t, err, ErrNoContentToPublish)
		assert.Zero(t, pub.calls.Load())
	})

	t.Run("explicit empty version fails before publishing", func(t *testing.T) {
		svc, _, v2 := seed(t)
		pub := &fakePublisher{url: "x"}

		_, err := NewDeployer(svc, pub, nil).Deploy(ctx, "p1", v2.ID)
		assert.ErrorIs(t, err, ErrNoContentToPublish)
		assert.Zero(t, pub.calls.Load())
	})

	t.Run("active version after switching back", func(t *testing.T) {
		svc, v1, _ := seed(t)
		_, err := svc.SwitchVersion(ctx, "p1", v1.ID)
		require.NoError(t, err)
		pub := &fakePublisher{url: "https://sites.example/v1"}

		dep, err := NewDeployer(svc, pub, nil).Deploy(ctx, "p1", "")
		require.NoError(t, err)
		assert.Equal(t, v1.ID, dep.VersionID)
	})

	t.Run("unknown project and version", func(t *testing.T) {
		svc, _, _ := seed(t)
		pub := &fakePublisher{}
		d := NewDeployer(svc, pub, nil)

		_, err := d.Deploy(ctx, "nope", "")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
		_, err = d.Deploy(ctx, "p1", "nope")
		assert.ErrorIs(t, err, domain.ErrVersionNotFound)
		assert.Zero(t, pub.calls.Load())
	})

	t.Run("publisher error surfaces unchanged", func(t *testing.T) {
		svc, v1, _ := seed(t)
		cause := errors.New("[deployHtml] HTTP error: 502 Bad Gateway")
		pub := &fakePublisher{err: cause}

		_, err := NewDeployer(svc, pub, nil).Deploy(ctx, "p1", v1.ID)
		var pubErr *PublishError
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, cause.Error(), err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, int32(1), pub.calls.Load())
	})
}

func TestEdgeOnePublisher(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/get_base_url":
			_ = json.NewEncoder(w).Encode(map[string]string{"baseUrl": srv.URL + "/upload"})
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "<html>hi</html>", body["value"])
			_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://mcp.edgeone.site/share/abc"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	url, err := NewEdgeOnePublisher(srv.URL+"/", 0).Publish(context.Background(), "<html>hi</html>")
	require.NoError(t, err)
	assert.Equal(t, "https://mcp.edgeone.site/share/abc", url)
}

func TestEdgeOnePublisher_HTTPErrors(t *testing.T) {
	t.Run("base url step", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewEdgeOnePublisher(srv.URL, 0).Publish(context.Background(), "<html></html>")
		require.Error(t, err)
		assert.Equal(t, "[getBaseUrl] HTTP error: 503 Service Unavailable", err.Error())
	})

	t.Run("upload step", func(t *testing.T) {
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/get_base_url" {
				_ = json.NewEncoder(w).Encode(map[string]string{"baseUrl": srv.URL + "/upload"})
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewEdgeOnePublisher(srv.URL, 0).Publish(context.Background(), "<html></html>")
		require.Error(t, err)
		assert.Equal(t, "[deployHtml] HTTP error: 502 Bad Gateway", err.Error())
	})
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Publisher(t *testing.T) {
	client := &fakeS3{}
	pub := NewS3PublisherWithClient(client, S3Config{
		Bucket: "sites-bucket", Prefix: "sites", PublicBaseURL: "https://sites.example.com/",
	})
	pub.newKey = func() string { return "abc" }

	url, err := pub.Publish(context.Background(), "<html>hi</html>")
	require.NoError(t, err)
	assert.Equal(t, "https://sites.example.com/sites/abc/index.html", url)
	assert.Equal(t, "sites-bucket", *client.input.Bucket)
	assert.Equal(t, "sites/abc/index.html", *client.input.Key)
	assert.Equal(t, "text/html; charset=utf-8", *client.input.ContentType)
	assert.Equal(t, "<html>hi</html>", client.body)

	client.err = errors.New("access denied")
	_, err = pub.Publish(context.Background(), "<html>hi</html>")
	assert.ErrorContains(t, err, "access denied")
}

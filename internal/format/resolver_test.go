package format_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"tubegrab/internal/consts"
	"tubegrab/internal/entity"
	"tubegrab/internal/extractor"
	"tubegrab/internal/format"
)

const testURL = "https://example.com/watch?v=abc"

func newTestResolver(ext extractor.Extractor) *format.Resolver {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return format.NewResolver(log, ext, nil)
}

func videoFormat(id string, height int, acodec string) extractor.RawFormat {
	return extractor.RawFormat{
		FormatID: id,
		Ext:      "mp4",
		Vcodec:   "avc1",
		Acodec:   acodec,
		Height:   height,
	}
}

func audioFormat(id string) extractor.RawFormat {
	return extractor.RawFormat{
		FormatID: id,
		Ext:      "m4a",
		Vcodec:   consts.CodecNone,
		Acodec:   "mp4a",
	}
}

func TestResolveManifest(t *testing.T) {
	tests := []struct {
		name      string
		manifest  *extractor.Manifest
		wantIDs   []string
		wantKinds []entity.FormatKind
	}{
		{
			name: "muxed and video-only derive kind from codecs",
			manifest: &extractor.Manifest{Formats: []extractor.RawFormat{
				videoFormat("22", 720, "mp4a"),
				videoFormat("137", 1080, consts.CodecNone),
			}},
			wantIDs:   []string{"22", "137"},
			wantKinds: []entity.FormatKind{entity.FormatKindVideoAudio, entity.FormatKindVideo},
		},
		{
			name: "audio entries follow video entries regardless of manifest order",
			manifest: &extractor.Manifest{Formats: []extractor.RawFormat{
				audioFormat("140"),
				videoFormat("22", 720, "mp4a"),
				audioFormat("251"),
				videoFormat("18", 360, "mp4a"),
			}},
			wantIDs: []string{"22", "18", "140", "251"},
			wantKinds: []entity.FormatKind{
				entity.FormatKindVideoAudio, entity.FormatKindVideoAudio,
				entity.FormatKindAudio, entity.FormatKindAudio,
			},
		},
		{
			name: "entries without any usable stream are skipped",
			manifest: &extractor.Manifest{Formats: []extractor.RawFormat{
				{FormatID: "sb0", Vcodec: consts.CodecNone, Acodec: consts.CodecNone},
				videoFormat("22", 720, "mp4a"),
			}},
			wantIDs:   []string{"22"},
			wantKinds: []entity.FormatKind{entity.FormatKindVideoAudio},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := newTestResolver(&extractor.Mock{Manifest: tc.manifest})

			got := resolver.Resolve(context.Background(), testURL)

			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got %d formats, want %d", len(got), len(tc.wantIDs))
			}

			for idx, f := range got {
				if f.ID != tc.wantIDs[idx] {
					t.Errorf("format %d: got ID %q, want %q", idx, f.ID, tc.wantIDs[idx])
				}

				if f.Kind != tc.wantKinds[idx] {
					t.Errorf("format %d: got kind %q, want %q", idx, f.Kind, tc.wantKinds[idx])
				}

				if f.Note != "" {
					t.Errorf("format %d: unexpected note %q", idx, f.Note)
				}
			}
		})
	}
}

func TestResolveQualityLabels(t *testing.T) {
	manifest := &extractor.Manifest{Formats: []extractor.RawFormat{
		videoFormat("one", 720, "mp4a"),
		{FormatID: "two", Vcodec: "avc1", FormatNote: "hd"},
		{FormatID: "three", Vcodec: "avc1"},
		audioFormat("four"),
	}}

	resolver := newTestResolver(&extractor.Mock{Manifest: manifest})

	got := resolver.Resolve(context.Background(), testURL)

	want := []string{"720p", "hd", consts.QualityUnknown, consts.QualityAudio}
	if len(got) != len(want) {
		t.Fatalf("got %d formats, want %d", len(got), len(want))
	}

	for idx, f := range got {
		if f.Quality != want[idx] {
			t.Errorf("format %d: got quality %q, want %q", idx, f.Quality, want[idx])
		}
	}
}

func TestResolveCapsAtMaxFormats(t *testing.T) {
	manifest := &extractor.Manifest{}
	for i := range 9 {
		manifest.Formats = append(manifest.Formats, videoFormat(fmt.Sprintf("v%d", i), 360+i, "mp4a"))
	}
	for i := range 5 {
		manifest.Formats = append(manifest.Formats, audioFormat(fmt.Sprintf("a%d", i)))
	}

	resolver := newTestResolver(&extractor.Mock{Manifest: manifest})

	got := resolver.Resolve(context.Background(), testURL)

	if len(got) != consts.MaxFormats {
		t.Fatalf("got %d formats, want %d", len(got), consts.MaxFormats)
	}

	// Video entries keep priority; only the first audio entry fits.
	if got[consts.MaxFormats-1].Kind != entity.FormatKindAudio {
		t.Errorf("got last kind %q, want %q", got[consts.MaxFormats-1].Kind, entity.FormatKindAudio)
	}
	if got[consts.MaxFormats-1].ID != "a0" {
		t.Errorf("got last ID %q, want %q", got[consts.MaxFormats-1].ID, "a0")
	}
}

func TestResolveEmptyManifestReturnsDefaults(t *testing.T) {
	tests := []struct {
		name     string
		manifest *extractor.Manifest
	}{
		{name: "no formats", manifest: &extractor.Manifest{}},
		{
			name: "no qualifying formats",
			manifest: &extractor.Manifest{Formats: []extractor.RawFormat{
				{FormatID: "sb0", Vcodec: consts.CodecNone, Acodec: consts.CodecNone},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := newTestResolver(&extractor.Mock{Manifest: tc.manifest})

			got := resolver.Resolve(context.Background(), testURL)

			want := format.DefaultFormats()
			if len(got) != len(want) {
				t.Fatalf("got %d formats, want %d", len(got), len(want))
			}

			for idx, f := range got {
				if f.ID != want[idx].ID || f.Kind != want[idx].Kind || f.Ext != want[idx].Ext {
					t.Errorf("format %d: got %+v, want %+v", idx, f, want[idx])
				}

				if f.Note != "" {
					t.Errorf("format %d: defaults must not be flagged, got note %q", idx, f.Note)
				}
			}
		})
	}
}

func TestResolveProbeErrorReturnsFallback(t *testing.T) {
	resolver := newTestResolver(&extractor.Mock{ProbeErr: errors.New("url unsupported")})

	got := resolver.Resolve(context.Background(), testURL)

	want := format.FallbackFormats()
	if len(got) != len(want) {
		t.Fatalf("got %d formats, want %d", len(got), len(want))
	}

	for idx, f := range got {
		if f.Quality != want[idx].Quality || f.Kind != want[idx].Kind {
			t.Errorf("format %d: got %+v, want %+v", idx, f, want[idx])
		}

		if f.Note != consts.NoteFallback {
			t.Errorf("format %d: got note %q, want %q", idx, f.Note, consts.NoteFallback)
		}
	}
}

package cluster_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-phenotype/internal/cluster"
)

func maskWithBlobs(w, h int, blobs ...image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))

	for _, blob := range blobs {
		for y := blob.Min.Y; y < blob.Max.Y; y++ {
			for x := blob.Min.X; x < blob.Max.X; x++ {
				mask.Pix[mask.PixOffset(x, y)] = 255
			}
		}
	}

	return mask
}

func activeCount(mask *image.Gray) int {
	n := 0
	for _, v := range mask.Pix {
		if v != 0 {
			n++
		}
	}

	return n
}

func TestClusterEmptyMask(t *testing.T) {
	t.Parallel()

	out, err := cluster.New(4, 2).Cluster(image.NewGray(image.Rect(0, 0, 10, 10)))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClusterTwoBlobs(t *testing.T) {
	t.Parallel()

	blobA := image.Rect(2, 2, 8, 8)
	blobB := image.Rect(40, 40, 46, 46)
	mask := maskWithBlobs(50, 50, blobA, blobB)

	out, err := cluster.New(4, 2).Cluster(mask)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Each region holds one whole blob, on the original bounds.
	assert.Equal(t, mask.Bounds(), out[0].Bounds())
	assert.Equal(t, 36, activeCount(out[0]))
	assert.Equal(t, 36, activeCount(out[1]))

	for i, region := range out {
		within := activeWithin(region, blobA) || activeWithin(region, blobB)
		assert.True(t, within, "region %d mixes pixels of both blobs", i)
	}
}

func activeWithin(mask *image.Gray, rect image.Rectangle) bool {
	bounds := mask.Bounds()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.Pix[mask.PixOffset(x, y)] != 0 && !image.Pt(x, y).In(rect) {
				return false
			}
		}
	}

	return true
}

func TestClusterHorizontalBlobs(t *testing.T) {
	t.Parallel()

	// Side-by-side blobs interleave in row scan order, so the point set is
	// not blob-contiguous. Each returned region must still lie wholly
	// inside one blob.
	blobA := image.Rect(2, 2, 8, 8)
	blobB := image.Rect(40, 2, 46, 8)
	mask := maskWithBlobs(50, 50, blobA, blobB)

	out, err := cluster.New(4, 2).Cluster(mask)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i, region := range out {
		within := activeWithin(region, blobA) || activeWithin(region, blobB)
		assert.True(t, within, "region %d mixes pixels of both blobs", i)
		assert.Equal(t, 36, activeCount(region))
	}
}

func TestClusterSingleBlob(t *testing.T) {
	t.Parallel()

	mask := maskWithBlobs(30, 30, image.Rect(5, 5, 15, 15))

	out, err := cluster.New(4, 2).Cluster(mask)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 100, activeCount(out[0]))
}

func TestClusterNoiseFiltered(t *testing.T) {
	t.Parallel()

	// One dense blob and one lone pixel far away from it.
	mask := maskWithBlobs(50, 50,
		image.Rect(2, 2, 10, 10),
		image.Rect(45, 45, 46, 46),
	)

	out, err := cluster.New(4, 2).Cluster(mask)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 64, activeCount(out[0]))
}

func TestClusterFractionalEpsilon(t *testing.T) {
	t.Parallel()

	// 0.06 of a 100x100 diagonal is ~8.5 pixels, enough to bridge the gap
	// between the two halves of the blob.
	mask := maskWithBlobs(100, 100,
		image.Rect(10, 10, 20, 20),
		image.Rect(26, 10, 36, 20),
	)

	out, err := cluster.New(4, 0.06).Cluster(mask)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 200, activeCount(out[0]))
}

package domain

import (
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/mediavault/mediavault/pkg/models"
)

// SimilarityRatio returns a Levenshtein-derived similarity ratio between two
// strings in [0, 100]. Comparison is case-folded.
func SimilarityRatio(a, b string) float64 {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return strutil.Similarity(a, b, lev) * 100
}

// GroupingKey partitions the inventory before fuzzy comparison. Episodic
// content keys on (title, year, season, episode); everything else on
// (title, year). Keys are case-folded.
type GroupingKey interface {
	fmt.Stringer
	groupingKey()
}

// EpisodicKey identifies one episode of episodic content.
type EpisodicKey struct {
	Title   string
	Year    int
	Season  int
	Episode int
}

func (k EpisodicKey) groupingKey() {}

func (k EpisodicKey) String() string {
	return fmt.Sprintf("%s|%d|s%02de%02d", strings.ToLower(k.Title), k.Year, k.Season, k.Episode)
}

// TitleKey identifies non-episodic content by title and year.
type TitleKey struct {
	Title string
	Year  int
}

func (k TitleKey) groupingKey() {}

func (k TitleKey) String() string {
	return fmt.Sprintf("%s|%d", strings.ToLower(k.Title), k.Year)
}

// KeyFor derives the grouping key for a file from its parsed metadata.
func KeyFor(file *models.MediaFile) GroupingKey {
	if file.MediaType == models.MediaTypeTV {
		return EpisodicKey{
			Title:   file.ParsedTitle,
			Year:    file.ParsedYear,
			Season:  file.ParsedSeason,
			Episode: file.ParsedEpisode,
		}
	}
	return TitleKey{Title: file.ParsedTitle, Year: file.ParsedYear}
}

// Cluster performs greedy single-link clustering over a partition of files.
// Files are processed in input order: the first unclaimed file seeds a
// cluster, and every later unclaimed file whose filename similarity to the
// seed meets the threshold joins it. Each file is claimed at most once.
// Only clusters of two or more files are returned.
func Cluster(files []*models.MediaFile, threshold float64) [][]*models.MediaFile {
	var clusters [][]*models.MediaFile
	claimed := make([]bool, len(files))

	for i, seed := range files {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		cluster := []*models.MediaFile{seed}

		for j := i + 1; j < len(files); j++ {
			if claimed[j] {
				continue
			}
			if SimilarityRatio(seed.Filename, files[j].Filename) >= threshold {
				claimed[j] = true
				cluster = append(cluster, files[j])
			}
		}

		if len(cluster) >= 2 {
			clusters = append(clusters, cluster)
		}
	}

	return clusters
}

// ClusterConfidence is the arithmetic mean of all pairwise filename
// similarity ratios among the cluster members.
func ClusterConfidence(cluster []*models.MediaFile) float64 {
	if len(cluster) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(cluster); i++ {
		for j := i + 1; j < len(cluster); j++ {
			sum += SimilarityRatio(cluster[i].Filename, cluster[j].Filename)
			pairs++
		}
	}
	return sum / float64(pairs)
}

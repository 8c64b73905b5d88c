package stages

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// PlantAnalysisName is the history name of the terminal analysis stage.
const PlantAnalysisName = "PlantAnalysis"

// Accepted timestamp layouts of the sample identifier token.
const (
	timestampLayout    = "2006-01-02 15_04_05"
	timestampLayoutAlt = "2006-01-02 15-04-05"
)

// PlantAnalysisConfig wraps the persistence parameters of the analysis sink.
type PlantAnalysisConfig struct {
	// OutFile is the destination prefix; the sanitized sample identifier and
	// a .csv extension are appended per processed sample.
	OutFile string
}

// PlantAnalysis measures every segmented plant and persists one tabular
// result file per sample. It is the pipeline's sink: its output channel is an
// empty snapshot, since nothing downstream consumes it.
type PlantAnalysis struct {
	ops imaging.Ops
	cfg PlantAnalysisConfig
}

func NewPlantAnalysis(ops imaging.Ops, cfg PlantAnalysisConfig) *PlantAnalysis {
	return &PlantAnalysis{ops: ops, cfg: cfg}
}

func (s *PlantAnalysis) Name() string                  { return PlantAnalysisName }
func (s *PlantAnalysis) InputKind() model.ChannelKind  { return model.KindSegmentation }
func (s *PlantAnalysis) OutputKind() model.ChannelKind { return model.KindSnapshot }

func (s *PlantAnalysis) Invoke(in model.Channel) (model.Channel, error) {
	seg, ok := in.(model.Segmentation)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	token := sampleToken(seg.Tag)

	stamp, err := parseTimestamp(token)
	if err != nil {
		return nil, errors.Wrapf(err, "sample %s", seg.Tag)
	}

	features := make([]imaging.Features, len(seg.Masks))

	for i := range seg.Masks {
		if seg.Masks[i] == nil || len(seg.Contours[i]) == 0 {
			// Undetected position: keep the row so the label still maps to
			// the same plant on other collection events.
			features[i] = imaging.Features{Label: i}

			continue
		}

		feats, err := s.ops.Analyze(seg.Image, seg.Contours[i], seg.Masks[i], i)
		if err != nil {
			return nil, errors.Wrapf(err, "analyze plant %d", i)
		}

		features[i] = feats
	}

	err = s.save(features, stamp, token)
	if err != nil {
		return nil, err
	}

	return model.Snapshot{}, nil
}

// OutputPath returns the result file path for the given channel tag.
func (s *PlantAnalysis) OutputPath(tag string) string {
	return s.cfg.OutFile + "_" + sanitize(sampleToken(tag)) + ".csv"
}

func (s *PlantAnalysis) save(features []imaging.Features, stamp time.Time, token string) error {
	path := s.cfg.OutFile + "_" + sanitize(token) + ".csv"

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create result file %s", path)
	}
	defer file.Close()

	wrt := csv.NewWriter(file)

	err = wrt.Write([]string{
		"label", "area", "perimeter", "width", "height", "solidity",
		"center_x", "center_y", "mean_intensity", "std_intensity", "timestamp",
	})
	if err != nil {
		return errors.Wrap(err, "unable to write result header")
	}

	for _, feats := range features {
		err = wrt.Write([]string{
			strconv.Itoa(feats.Label),
			formatFloat(feats.Area),
			formatFloat(feats.Perimeter),
			strconv.Itoa(feats.Width),
			strconv.Itoa(feats.Height),
			formatFloat(feats.Solidity),
			formatFloat(feats.CenterX),
			formatFloat(feats.CenterY),
			formatFloat(feats.MeanIntensity),
			formatFloat(feats.StdIntensity),
			stamp.Format(time.RFC3339),
		})
		if err != nil {
			return errors.Wrapf(err, "unable to write result row %d", feats.Label)
		}
	}

	wrt.Flush()

	return errors.Wrapf(wrt.Error(), "unable to flush result file %s", path)
}

// sampleToken extracts the timestamp token of a sample tag: the file base
// name without extension, stripped of its "image_" prefix when present.
func sampleToken(tag string) string {
	token := filepath.Base(tag)
	token = strings.TrimSuffix(token, filepath.Ext(token))

	if idx := strings.Index(token, "image_"); idx >= 0 {
		token = token[idx+len("image_"):]
	}

	return token
}

func sanitize(token string) string {
	token = strings.ReplaceAll(token, " ", "_")

	return strings.ReplaceAll(token, "-", "_")
}

func parseTimestamp(token string) (time.Time, error) {
	stamp, err := time.Parse(timestampLayout, token)
	if err == nil {
		return stamp, nil
	}

	stamp, err = time.Parse(timestampLayoutAlt, token)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to parse timestamp %q", token)
	}

	return stamp, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

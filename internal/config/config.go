// Package config loads a phenotyping run description from a YAML file and
// builds the stage chain it describes.
package config

import (
	"image"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/askiada/go-phenotype/internal/cluster"
	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
	"github.com/askiada/go-phenotype/pkg/pipeline/stages"
)

// ErrUnknownStage is returned when a stage entry names a type that does not
// exist.
var ErrUnknownStage = errors.New("unknown stage type")

// Stage type discriminators accepted in the stages list.
const (
	TypeWhiteBalance   = "white_balance"
	TypeViewportAdjust = "viewport_adjust"
	TypeBinaryMask     = "binary_mask"
	TypeConsolidation  = "consolidation"
	TypeRigid          = "rigid_segmentation"
	TypeDBSCAN         = "dbscan_segmentation"
	TypePlantAnalysis  = "plant_analysis"
)

// Config is the full run description.
type Config struct {
	// InputDir holds the acquisition frames.
	InputDir string `mapstructure:"input_dir"`
	// OutFile is the per-sample result prefix used by the analysis stage.
	OutFile string `mapstructure:"out_file"`
	// DrawerFile, when set, is the SVG path the chain drawing is written to.
	DrawerFile string `mapstructure:"drawer_file"`
	// Concurrency bounds how many frames are formatted at once. Zero or one
	// means sequential processing.
	Concurrency int `mapstructure:"concurrency"`
	// NightThreshold is the mean intensity below which frames are invalid.
	NightThreshold float64       `mapstructure:"night_threshold"`
	Stages         []StageConfig `mapstructure:"stages"`
}

// StageConfig describes a single stage. Type selects the stage; the other
// fields are read depending on it.
type StageConfig struct {
	Type string `mapstructure:"type"`

	// white_balance
	ROI RectConfig `mapstructure:"roi"`

	// viewport_adjust
	Side   string  `mapstructure:"side"`
	Rotate float64 `mapstructure:"rotate"`
	Shift  int     `mapstructure:"shift"`

	// binary_mask
	Channel   string `mapstructure:"channel"`
	Threshold uint8  `mapstructure:"threshold"`
	MaxValue  uint8  `mapstructure:"max_value"`
	Polarity  string `mapstructure:"polarity"`
	Fill      int    `mapstructure:"fill"`

	// consolidation
	StageNames []string `mapstructure:"stage_names"`
	Output     string   `mapstructure:"output"`

	// rigid_segmentation
	Grid    *GridConfig   `mapstructure:"grid"`
	Centers []PointConfig `mapstructure:"centers"`
	Radius  int           `mapstructure:"radius"`

	// dbscan_segmentation
	MinClusterSize int     `mapstructure:"min_cluster_size"`
	Epsilon        float64 `mapstructure:"epsilon"`
	MaxRefineDepth int     `mapstructure:"max_refine_depth"`
}

// RectConfig is a rectangle in pixel coordinates.
type RectConfig struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

func (r RectConfig) rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// PointConfig is a point in pixel coordinates.
type PointConfig struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// GridConfig describes a regular grid of circular regions.
type GridConfig struct {
	StartX   int `mapstructure:"start_x"`
	StartY   int `mapstructure:"start_y"`
	SpacingX int `mapstructure:"spacing_x"`
	SpacingY int `mapstructure:"spacing_y"`
	Rows     int `mapstructure:"rows"`
	Cols     int `mapstructure:"cols"`
	Radius   int `mapstructure:"radius"`
}

// Load reads and decodes the run description at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("concurrency", 1)
	v.SetDefault("night_threshold", 50.0)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	return &cfg, nil
}

// Build turns the stage descriptions into a runnable stage chain.
func (c *Config) Build(ops imaging.Ops) ([]model.Stage, error) {
	built := make([]model.Stage, 0, len(c.Stages))

	for i, sc := range c.Stages {
		stage, err := buildStage(ops, sc, c.OutFile)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d", i)
		}

		built = append(built, stage)
	}

	return built, nil
}

func buildStage(ops imaging.Ops, sc StageConfig, outFile string) (model.Stage, error) {
	switch strings.ToLower(sc.Type) {
	case TypeWhiteBalance:
		return stages.NewWhiteBalance(ops, stages.WhiteBalanceConfig{ROI: sc.ROI.rect()}), nil

	case TypeViewportAdjust:
		return stages.NewViewportAdjust(ops, stages.ViewportAdjustConfig{
			Side:   imaging.Side(sc.Side),
			Rotate: sc.Rotate,
			Shift:  sc.Shift,
		}), nil

	case TypeBinaryMask:
		return stages.NewBinaryMask(ops, stages.BinaryMaskConfig{
			Channel:   imaging.ColorChannel(sc.Channel),
			Threshold: sc.Threshold,
			MaxValue:  sc.MaxValue,
			Polarity:  imaging.Polarity(sc.Polarity),
			Fill:      sc.Fill,
		}), nil

	case TypeConsolidation:
		output, err := parseKind(sc.Output)
		if err != nil {
			return nil, err
		}

		return stages.NewConsolidation(stages.ConsolidationConfig{
			StageNames: sc.StageNames,
			Output:     output,
		})

	case TypeRigid:
		layout, err := buildLayout(sc)
		if err != nil {
			return nil, err
		}

		return stages.NewRigidSegmentation(ops, layout), nil

	case TypeDBSCAN:
		clusterer := cluster.New(sc.MinClusterSize, sc.Epsilon)

		return stages.NewDBSCANSegmentation(ops, clusterer, stages.DBSCANSegmentationConfig{
			MaxRefineDepth: sc.MaxRefineDepth,
		}), nil

	case TypePlantAnalysis:
		return stages.NewPlantAnalysis(ops, stages.PlantAnalysisConfig{OutFile: outFile}), nil
	}

	return nil, errors.Wrapf(ErrUnknownStage, "%q", sc.Type)
}

func buildLayout(sc StageConfig) (stages.Layout, error) {
	if sc.Grid != nil {
		return stages.GridLayout{
			Start:   image.Pt(sc.Grid.StartX, sc.Grid.StartY),
			Radius:  sc.Grid.Radius,
			Spacing: image.Pt(sc.Grid.SpacingX, sc.Grid.SpacingY),
			Rows:    sc.Grid.Rows,
			Cols:    sc.Grid.Cols,
		}, nil
	}

	if len(sc.Centers) == 0 {
		return nil, errors.New("rigid segmentation wants a grid or explicit centers")
	}

	centers := make([]image.Point, len(sc.Centers))
	for i, p := range sc.Centers {
		centers[i] = image.Pt(p.X, p.Y)
	}

	return stages.CustomLayout{Centers: centers, Radius: sc.Radius}, nil
}

func parseKind(name string) (model.ChannelKind, error) {
	switch strings.ToLower(name) {
	case "single_image":
		return model.KindSingleImage, nil
	case "double_image":
		return model.KindDoubleImage, nil
	}

	return model.KindInvalid, errors.Errorf("unknown output kind %q", name)
}

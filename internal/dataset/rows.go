package dataset

import (
	"fmt"
	"strconv"

	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/google/uuid"
)

var coordinateColumns = []string{"x", "y", "z", "x_normalized", "y_normalized", "z_normalized"}

// FileName returns a fresh dataset file name, dataset_<uuid>.csv.
func FileName() string {
	return fmt.Sprintf("dataset_%s.csv", uuid.NewString())
}

// Header lists the CSV columns for the given angle definitions.
func Header(defs []pose.AngleDefinition) []string {
	h := []string{"sequence_id", "sequence_source", "frame_number", "time", "label", "has_joint_positions"}
	for _, name := range pose.Vocabulary() {
		for _, c := range coordinateColumns {
			h = append(h, name+"_"+c)
		}
	}
	for _, d := range defs {
		h = append(h, d.Name+"_2d_degrees", d.Name+"_3d_degrees")
	}
	return h
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Record flattens one frame into a CSV row matching Header(defs). Without an
// annotation file the time and label cells stay empty. The bool reports
// whether the frame received a label.
func Record(f *pose.Frame, ann *AnnotationFile, defs []pose.AngleDefinition) ([]string, bool) {
	rec := make([]string, 0, 6+len(coordinateColumns)*pose.NumJoints+2*len(defs))

	var timeCell, label string
	labelled := false
	if ann != nil {
		t := ann.FrameTime(f.FrameNumber())
		timeCell = formatFloat(t)
		label, labelled = ann.LabelAt(t)
	}
	rec = append(rec,
		strconv.FormatInt(f.SequenceID(), 10),
		f.SequenceSource(),
		strconv.Itoa(f.FrameNumber()),
		timeCell,
		label,
		strconv.FormatBool(f.HasJointPositions()),
	)

	p, ok := f.Pose()
	for _, j := range pose.Joints() {
		if !ok {
			rec = append(rec, make([]string, len(coordinateColumns))...)
			continue
		}
		l := p.Landmark(j)
		rec = append(rec,
			formatFloat(l.X), formatFloat(l.Y), formatFloat(l.Z),
			formatFloat(l.XNormalized), formatFloat(l.YNormalized), formatFloat(l.ZNormalized),
		)
	}

	for _, d := range defs {
		var a pose.Angle
		found := false
		if ok {
			a, found = p.Angle(d.Name)
		}
		if !found {
			rec = append(rec, "", "")
			continue
		}
		rec = append(rec, formatFloat(a.Angle2DDegrees), formatFloat(a.Angle3DDegrees))
	}
	return rec, labelled
}

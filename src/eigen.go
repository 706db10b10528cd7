package main

import (
	"database/sql"
	"math"

	"gonum.org/v1/gonum/mat"
)

// eigenResult is one principal axis of the orientation tensor: its
// orientation as dip direction/dip and its normalized eigenvalue.
type eigenResult struct {
	Dir   float64
	Dip   float64
	Value float64
}

// directionCosines converts an azimuth/plunge pair in degrees to a
// north-east-down unit vector.
func directionCosines(dir, dip float64) (x, y, z float64) {
	a := dir * math.Pi / 180
	p := dip * math.Pi / 180
	return math.Cos(p) * math.Cos(a), math.Cos(p) * math.Sin(a), math.Sin(p)
}

// lineFromCosines converts a direction vector back to azimuth/plunge in
// degrees, flipped into the lower hemisphere and with the azimuth wrapped
// into 0-360.
func lineFromCosines(x, y, z float64) (dir, dip float64) {
	if z < 0 {
		x, y, z = -x, -y, -z
	}
	n := math.Sqrt(x*x + y*y + z*z)
	if n == 0 {
		return 0, 0
	}
	dip = math.Asin(z/n) * 180 / math.Pi
	dir = math.Atan2(y, x) * 180 / math.Pi
	for dir < 0 {
		dir += 360
	}
	for dir >= 360 {
		dir -= 360
	}
	return dir, dip
}

// eigenvectors computes the orientation tensor of a set of dir/dip
// measurements and eigen-decomposes it. The three principal axes are
// returned largest eigenvalue first; eigenvalues are normalized so they sum
// to one. Returns false when no feature carries a usable orientation.
func eigenvectors(features []Feature) ([]eigenResult, bool) {
	t := mat.NewSymDense(3, nil)
	n := 0
	for _, f := range features {
		dv, okDir := f.Data["dir"]
		pv, okDip := f.Data["dip"]
		if !okDir || !okDip {
			continue
		}
		x, y, z := directionCosines(asFloat(dv), asFloat(pv))
		t.SetSym(0, 0, t.At(0, 0)+x*x)
		t.SetSym(1, 1, t.At(1, 1)+y*y)
		t.SetSym(2, 2, t.At(2, 2)+z*z)
		t.SetSym(0, 1, t.At(0, 1)+x*y)
		t.SetSym(0, 2, t.At(0, 2)+x*z)
		t.SetSym(1, 2, t.At(1, 2)+y*z)
		n++
	}
	if n == 0 {
		return nil, false
	}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			t.SetSym(i, j, t.At(i, j)/float64(n))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(t, true) {
		return nil, false
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// the tensor of unit vectors has trace 1, but guard against drift
	sum := vals[0] + vals[1] + vals[2]
	if sum == 0 {
		return nil, false
	}

	// gonum returns eigenvalues ascending; report largest first
	out := make([]eigenResult, 0, 3)
	for i := 2; i >= 0; i-- {
		dir, dip := lineFromCosines(vecs.At(0, i), vecs.At(1, i), vecs.At(2, i))
		val := vals[i] / sum
		if val < 0 {
			val = 0
		}
		if val > 1 {
			val = 1
		}
		out = append(out, eigenResult{Dir: dir, Dip: dip, Value: val})
	}
	return out, true
}

// appendEigenvectors runs the fabric analysis for a source layer and appends
// the three principal axes as rows of an eigenvector layer.
func appendEigenvectors(db *sql.DB, srcLayerID, dstLayerID int) (int, error) {
	features, err := getFeatures(db, srcLayerID)
	if err != nil {
		return 0, err
	}
	results, ok := eigenvectors(features)
	if !ok {
		return 0, nil
	}
	for _, r := range results {
		data := blankFeature(LayerEigenvector)
		data["dir"] = r.Dir
		data["dip"] = r.Dip
		data["value"] = r.Value
		if _, err := insertFeature(db, dstLayerID, data); err != nil {
			return 0, err
		}
	}
	return len(results), nil
}

package scifi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Azimuths are handled as fractions of one revolution. A transverse fiber
// with fraction u lies at azimuth u for every z. A helical fiber with
// fraction u and lead λ passes azimuth u + s·z/λ (s = +1 left, -1 right)
// over z in [-λ/2, λ/2).

// mod1 normalizes x into [0, 1).
func mod1(x float64) float64 {
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	if x >= 1 {
		x = 0
	}
	return x
}

// wrapHalf normalizes x into [-0.5, 0.5).
func wrapHalf(x float64) float64 {
	return mod1(x+0.5) - 0.5
}

// CircularDistance is the distance between two fractions on the circle.
func CircularDistance(a, b float64) float64 {
	return math.Abs(wrapHalf(a - b))
}

// StereoRoots returns the two azimuth fractions where a left and a right
// helical fiber cross. They are half a revolution apart.
func StereoRoots(uL, uR float64) (float64, float64) {
	f1 := mod1((uL + uR) / 2)
	return f1, mod1(f1 + 0.5)
}

// NearestRoot picks the stereo root closest to the transverse fraction uT.
// Roots closer to each other than tieTolerance (in distance to uT) resolve
// to the numerically lower root.
func NearestRoot(f1, f2, uT, tieTolerance float64) (root float64, distance float64) {
	d1 := CircularDistance(f1, uT)
	d2 := CircularDistance(f2, uT)
	if math.Abs(d1-d2) <= tieTolerance {
		if f2 < f1 {
			return f2, d2
		}
		return f1, d1
	}
	if d2 < d1 {
		return f2, d2
	}
	return f1, d1
}

// HelicalZ is the axial position where a helical fiber with fraction u
// reaches azimuth fraction f.
func HelicalZ(f, u float64, family Family, lead float64) float64 {
	return family.Sign() * lead * wrapHalf(f-u)
}

func cylinderPoint(radius, f, z float64) r3.Vec {
	phi := 2 * math.Pi * f
	return r3.Vec{X: radius * math.Cos(phi), Y: radius * math.Sin(phi), Z: z}
}

// ReconstructPosition converts a hit group into space points: one point
// when the transverse view is present, two mirror points for a stereo
// pair without transverse view. Only the left and right helical pair is
// ambiguous; a helical and transverse pair fixes the azimuth from the
// transverse fiber and yields a single point.
func ReconstructPosition(ev *Event, cat *Catalog, hg HitGroup, p PositionParams) []SpacePoint {
	group := cat.Group(hg.Group)
	families := hg.Families()

	var summaries [NumFamilies]ClusterSummary
	for f := LeftHelical; f <= Transverse; f++ {
		if !families.Has(f) {
			continue
		}
		cluster := ev.Cluster(hg.Clusters[f])
		if cluster.Group != hg.Group || cluster.Family != f {
			panic(fmt.Sprintf("hit group %d holds cluster of group %d family %v as %v",
				hg.Group, cluster.Group, cluster.Family, f))
		}
		summaries[f] = cluster.Summary
	}
	if families.Has(LeftHelical) || families.Has(RightHelical) {
		if group.Lead <= 0 {
			panic(fmt.Sprintf("group %d has helical clusters but no helical lead", hg.Group))
		}
	}

	times := make([]float64, 0, NumFamilies)
	weights := make([]float64, 0, NumFamilies)
	for f := LeftHelical; f <= Transverse; f++ {
		if families.Has(f) {
			times = append(times, summaries[f].Time)
			weights = append(weights, float64(summaries[f].PhotonCount))
		}
	}
	point := SpacePoint{
		EventID:  ev.ID,
		Time:     stat.Mean(times, weights),
		Group:    hg.Group,
		Families: families,
	}

	sL, sR, sT := summaries[LeftHelical], summaries[RightHelical], summaries[Transverse]
	radius, lead := group.Radius, group.Lead

	switch {
	case families.Len() == 3:
		f1, f2 := StereoRoots(sL.Fraction, sR.Fraction)
		root, _ := NearestRoot(f1, f2, sT.Fraction, p.RootTieTolerance)

		pLT := cylinderPoint(radius, sT.Fraction, HelicalZ(sT.Fraction, sL.Fraction, LeftHelical, lead))
		pRT := cylinderPoint(radius, sT.Fraction, HelicalZ(sT.Fraction, sR.Fraction, RightHelical, lead))
		pLR := cylinderPoint(radius, root, HelicalZ(root, sL.Fraction, LeftHelical, lead))

		nL, nR, nT := float64(sL.PhotonCount), float64(sR.PhotonCount), float64(sT.PhotonCount)
		sum := r3.Add(r3.Add(r3.Scale(nL+nT, pLT), r3.Scale(nR+nT, pRT)), r3.Scale(nL+nR, pLR))
		point.Position = r3.Scale(1/(2*(nL+nR+nT)), sum)
		return []SpacePoint{point}

	case families.Has(LeftHelical) && families.Has(RightHelical):
		f1, f2 := StereoRoots(sL.Fraction, sR.Fraction)
		first, second := point, point
		first.Position = cylinderPoint(radius, f1, HelicalZ(f1, sL.Fraction, LeftHelical, lead))
		second.Position = cylinderPoint(radius, f2, HelicalZ(f2, sL.Fraction, LeftHelical, lead))
		first.Ambiguous = true
		second.Ambiguous = true
		return []SpacePoint{first, second}

	case families.Has(Transverse) && families.Len() == 2:
		helical := LeftHelical
		if families.Has(RightHelical) {
			helical = RightHelical
		}
		z := HelicalZ(sT.Fraction, summaries[helical].Fraction, helical, lead)
		point.Position = cylinderPoint(radius, sT.Fraction, z)
		return []SpacePoint{point}
	}

	if verbosity > 1 {
		message := fmt.Sprintf("Event %d: hit group with families %v cannot be reconstructed", ev.ID, families)
		logger.Info(message, "position")
	}
	return nil
}

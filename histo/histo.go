package histo

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Dividers returns nbins+1 evenly spaced dividers between min and max.
func Dividers(min, max float64, nbins int) []float64 {
	if nbins < 1 || !(max > min) {
		panic(fmt.Sprintf("gomembrane/histo.Dividers: can't build %d bins between %g and %g", nbins, min, max))
	}
	return floats.Span(make([]float64, nbins+1), min, max)
}

//Data is a histogram. The dividers are the bin edges, so there is
//one bin less than dividers. Values equal to the last divider are
//counted in the last bin.
type Data struct {
	label      string
	normalized bool
	total      int
	outside    int //data points that fell outside the dividers
	dividers   []float64
	histo      []float64
}

func (D *Data) MarshalJSON() ([]byte, error) {
	j, err := json.Marshal(struct {
		Label      string    `json:"label"`
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Outside    int       `json:"outside"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}{
		Label:      D.label,
		Normalized: D.normalized,
		Total:      D.total,
		Outside:    D.outside,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a struct {
		Label      string    `json:"label"`
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Outside    int       `json:"outside"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}
	err := json.Unmarshal(b, &a)
	if err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("gomembrane/histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.label = a.Label
	D.normalized = a.Normalized
	D.total = a.Total
	D.outside = a.Outside
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

//Label returns the label (lipid type or pair key) of the histogram
func (D *Data) Label() string {
	return D.label
}

//String prints a -hopefully- pretty string representation of
//the histogram. The representation uses 3 lines of thext
func (D *Data) String() string {
	ret := fmt.Sprintf("%s: Normalized: %v, TotalData: %d\n", D.label, D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

//NewData returns a new histogram from the dividers and rawdata given.
//rawdata can be nil. In that case, an empty histogram is created.
//The dividers are copied. rawdata is not modified.
func NewData(label string, dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 {
		panic("gomembrane/histo.NewData: at least 2 dividers needed")
	}
	d := new(Data)
	d.label = label
	d.dividers = make([]float64, len(dividers))
	copy(d.dividers, dividers)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(d.dividers, rawdata)
	}
	return d
}

//bin returns the bin for v, or -1 if it is outside the dividers.
func (D *Data) bin(v float64) int {
	last := len(D.dividers) - 1
	if v < D.dividers[0] || v > D.dividers[last] || math.IsNaN(v) {
		return -1
	}
	if v == D.dividers[last] {
		return last - 1
	}
	//the first divider larger than v closes v's bin.
	return sort.Search(last+1, func(i int) bool { return D.dividers[i] > v }) - 1
}

//AddData adds the given data point(s) to the histogram. Points outside
//the dividers are not counted, only registered as Outside.
func (D *Data) AddData(point ...float64) {
	var norma bool
	if D.normalized {
		norma = true
		D.UnNormalize()
	}
	for _, v := range point {
		b := D.bin(v)
		if b < 0 {
			D.outside++
			continue
		}
		D.histo[b]++
		D.total++
	}
	//if it was normalized, we should return it to that state
	if norma {
		D.Normalize()
	}
}

//Total returns the number of data points in the histogram.
func (D *Data) Total() int {
	return D.total
}

//Outside returns the number of data points given that were out of range.
func (D *Data) Outside() int {
	return D.outside
}

//Len returns the number of bins
func (D *Data) Len() int {
	return len(D.histo)
}

//Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

//Normalize normalizes the histogram, so its bins add up to 1.
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

//UnNormalize un-normalizes the histogram, so it contains counts.
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

//normalizes or un-normalizes the histogram depending
//on whether normalize is true
func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	D.normalized = false
	if normalize {
		n = 1 / float64(D.total)
		D.normalized = true
	}
	floats.Scale(n, D.histo)
}

//Counts returns the number of points in each bin, regardless of
//whether the histogram is normalized.
func (D *Data) Counts(dest ...[]float64) []float64 {
	d := D.Copy(dest...)
	if D.normalized {
		floats.Scale(float64(D.total), d)
	}
	return d
}

//Density returns the histogram as a probability density, i.e. the
//fraction of points in each bin divided by the bin width. It returns all
//zeros for an empty histogram.
func (D *Data) Density(dest ...[]float64) []float64 {
	d := D.Counts(dest...)
	if D.total == 0 {
		return d
	}
	for i := range d {
		d[i] /= float64(D.total) * (D.dividers[i+1] - D.dividers[i])
	}
	return d
}

//BinCenters returns the middle point of each bin.
func (D *Data) BinCenters(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.histo), dest...)
	for i := range d {
		d[i] = (D.dividers[i] + D.dividers[i+1]) / 2
	}
	return d
}

//NonEmpty returns the number of bins with at least one point.
func (D *Data) NonEmpty() int {
	n := 0
	for _, v := range D.histo {
		if v > 0 {
			n++
		}
	}
	return n
}

//Copies the dividers of the histogram
func (D *Data) CopyDividers(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.dividers), dest...)
	return floats.ScaleTo(d, 1, D.dividers)
}

//Copy returns a copy of the bins.
func (D *Data) Copy(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.histo), dest...)
	return floats.ScaleTo(d, 1, D.histo)
}

//View returns the bins. Changing them changes the histogram.
func (D *Data) View() []float64 {
	return D.histo
}

func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

//ReHisto rebuilds the histogram from rawdata with the given dividers.
//rawdata is not modified.
func (D *Data) ReHisto(dividers, rawdata []float64) {
	sorted := make([]float64, len(rawdata))
	copy(sorted, rawdata)
	sort.Float64s(sorted)
	last := dividers[len(dividers)-1]
	//stat.Histogram panics with values that are off limits
	//so we remove them here before the call. Values equal to the last
	//divider go into the last bin.
	mini := sort.SearchFloat64s(sorted, dividers[0])
	maxi := sort.Search(len(sorted), func(i int) bool { return sorted[i] > last })
	atlast := maxi - sort.SearchFloat64s(sorted, last)
	D.outside = len(sorted) - (maxi - mini)
	if D.outside > 0 {
		log.Printf("gomembrane/histo: %s: %d values outside [%g, %g] were not counted", D.label, D.outside, dividers[0], last)
	}
	sorted = sorted[mini : maxi-atlast]
	D.dividers = dividers
	D.histo = stat.Histogram(nil, dividers, sorted, nil)
	D.histo[len(D.histo)-1] += float64(atlast)
	D.total = len(sorted) + atlast
	D.normalized = false
}

//WriteTable writes the histogram as 3 columns: the bin center multiplied by xscale,
//the number of points in the bin and the probability density (per unscaled x unit).
func (D *Data) WriteTable(w io.Writer, xscale float64) error {
	x := D.BinCenters()
	c := D.Counts()
	p := D.Density()
	if _, err := fmt.Fprintf(w, "# %s total %d outside %d\n", D.label, D.total, D.outside); err != nil {
		return err
	}
	for i := range x {
		if _, err := fmt.Fprintf(w, "%12.6f %10.0f %14.6e\n", x[i]*xscale, c[i], p[i]); err != nil {
			return err
		}
	}
	return nil
}

func getCopySlice(N int, dest ...[]float64) []float64 {
	var d []float64
	if len(dest) > 0 && len(dest[0]) >= N {
		d = dest[0]
		if len(dest[0]) > N {
			d = dest[0][:N] //floats.ScaleTo wants both slices to _match_
		}
	} else {
		d = make([]float64, N)
	}
	return d
}

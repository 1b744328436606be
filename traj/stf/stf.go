package stf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	membrane "github.com/rmera/gomembrane"
	v3 "github.com/rmera/gomembrane/v3"
)

//DefaultPrec is the number of decimal places kept for coordinates when the
//header doesn't say otherwise.
const DefaultPrec = 2

//Write!
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	buf       *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	frames    int
}

//Close flushes and closes the file. The writer can't be used afterwards.
func (S *StfW) Close() {
	if S == nil {
		return
	}
	if S.writeable {
		S.buf.Flush()
		S.h.Close()
		S.f.Close()
	}
	S.writeable = false
}

//Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

//Frames returns the number of frames written so far.
func (S *StfW) Frames() int {
	return S.frames
}

//WNext writes coord as the next frame. If box is given, its first element
//must contain the 9 components of the box vectors.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var temp [3]int
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		if _, err := S.buf.WriteString(coordsEncode(floats, temp, S.prec)); err != nil {
			return Error{err.Error(), S.filename, []string{"WNext"}, true}
		}
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.buf, "* %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.buf.WriteString("*\n")
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	S.frames++
	return nil
}

//NewWriter creates the file name and returns a writer for a trajectory with natoms
//atoms per frame. The header is written at the beginning of the file, with the keys
//sorted. A "prec" key, if present, sets the precision. Files ending in "z" are
//gzip-compressed, everything else uses zstd.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := gzip.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := new(StfW)
	S.filename = name
	S.prec = DefaultPrec
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("gomembrane/stf: Invalid precision %q for trajectory %s. Will use the default", p, S.filename)
		}
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	if strings.HasSuffix(strings.ToLower(name), "z") {
		S.h, err = gzip.NewWriterLevel(S.f, level)
	} else {
		S.h, err = zstd.NewWriter(S.f, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't create compressor " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.buf = bufio.NewWriter(S.h)
	S.natoms = natoms
	S.writeable = true
	keys := make([]string, 0, len(header)+1)
	for k := range header {
		if k != "prec" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(S.buf, "prec=%d\n", S.prec)
	for _, k := range keys {
		fmt.Fprintf(S.buf, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.buf, "** %d\n", S.natoms)
	return S, nil
}

//Read!
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

//*zstd.Decoder doesn't implement io.ReadCloser.
type stdql struct {
	*zstd.Decoder
}

//Close Closes the object. It can not be used after this call
func (s stdql) Close() error {
	s.Decoder.Close()
	return nil
}

func precFactor(prec int) float64 {
	if prec == 2 {
		return 100.0
	}
	return math.Pow(10.0, float64(prec))
}

func coordsEncode(f [3]float64, temp [3]int, prec int) string {
	p := precFactor(prec)
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

//New opens a STF trajectory for reading, and returns a pointer
//to the handle, a map with the metadata (empty, if no metadata is found)
//and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := new(StfR)
	S.natoms = -1 //just so we know if things don't work
	S.prec = DefaultPrec
	m := make(map[string]string)
	var err error
	S.filename = name
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	intermediate := bufio.NewReader(S.f)
	if strings.HasSuffix(strings.ToLower(name), "z") {
		S.dec, err = gzip.NewReader(intermediate)
	} else {
		var z *zstd.Decoder
		z, err = zstd.NewReader(intermediate)
		if err == nil {
			S.dec = stdql{z}
		}
	}
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), S.filename, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			S.close()
			return nil, nil, Error{"Malformed header line: " + str, S.filename, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	S.readable = true
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("gomembrane/stf: Invalid precision for trajectory %s. Will assume the default", S.filename)
		}
	}
	return S, m, nil
}

//Readabe returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := precFactor(prec)
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("%s: expected 3 fields, got %d: %s", WrongFormat, len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
//and, if given, and the information is present, puts the box vector information in box.
//If c is nil, the frame is read and checked, but discarded.
//At the end of the trajectory, it returns an error implementing membrane.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			if err == io.EOF && i == 0 && b == "" {
				//nothing bad happened here, the trajectory just ended.
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		err = coordsDecode(b, &temp, S.prec)
		if err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(err == io.EOF && s != "") {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s == "" || s[0] != '*' {
		return Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 { // The "*" and the 9 numbers
		for i := range box[0] {
			box[0][i] = 0
		}
		return nil
	}
	for j, v := range fields[1:10] {
		var errbox error
		box[0][j], errbox = strconv.ParseFloat(v, 64)
		//If we got an error reading any of the values, we just set the whole thing to zero
		//and log, no error returned.
		if errbox != nil {
			log.Printf("gomembrane/stf: Failed to read box in a frame from %s", S.filename)
			for i := range box[0] {
				box[0][i] = 0.0
			}
			break
		}
	}
	return nil
}

func (S *StfR) close() {
	if S.dec != nil {
		S.dec.Close()
	}
	S.f.Close()
}

//Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.close()
	S.readable = false
}

//Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

//Errors

//errDecorate decorates err with the caller's name, if it implements membrane.Error.
func errDecorate(err error, caller string) error {
	return membrane.ErrDecorate(err, caller)
}

//Error is the general structure for STF trajectory errors. It fullfills membrane.Error and membrane.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Filename returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

//lastFrameError implements membrane.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//lastFrameError does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "stf" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

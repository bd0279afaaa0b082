// Package nid validates Egyptian national ID numbers and extracts the
// personal data encoded in them. A 14-digit ID carries a century indicator,
// birth date, birth governorate and a sequence number whose parity encodes
// gender.
package nid

import (
	"fmt"
	"time"
)

// Gender is decoded from the parity of the sequence number.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// DateOfBirth is the birth date decoded from digits 2 through 7.
type DateOfBirth struct {
	FullDate string `json:"full_date"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Age      int    `json:"age"`
}

// Location is the birth governorate decoded from digits 8 and 9.
type Location struct {
	GovernorateCode string `json:"governorate_code"`
	GovernorateName string `json:"governorate_name"`
}

// Data is the outcome of validating one national ID. Extraction failures
// accumulate in Errors; fields that could not be decoded stay nil. IsValid
// is true only when Errors is empty.
type Data struct {
	NationalID     string       `json:"national_id"`
	IsValid        bool         `json:"is_valid"`
	DateOfBirth    *DateOfBirth `json:"date_of_birth"`
	Gender         *Gender      `json:"gender"`
	Location       *Location    `json:"location"`
	SequenceNumber *string      `json:"sequence_number"`
	Century        *int         `json:"century"`
	Errors         []string     `json:"errors"`
}

var governorateNames = map[string]string{
	"01": "Cairo",
	"02": "Alexandria",
	"03": "Port Said",
	"04": "Suez",
	"11": "Damietta",
	"12": "Dakahlia",
	"13": "Sharqia",
	"14": "Qalyubia",
	"15": "Kafr El-Sheikh",
	"16": "Gharbia",
	"17": "Menoufia",
	"18": "Beheira",
	"19": "Ismailia",
	"21": "Giza",
	"22": "Beni Suef",
	"23": "Fayoum",
	"24": "Minya",
	"25": "Asyut",
	"26": "Sohag",
	"27": "Qena",
	"28": "Aswan",
	"29": "Luxor",
	"31": "Red Sea",
	"32": "New Valley",
	"33": "Matrouh",
	"34": "North Sinai",
	"35": "South Sinai",
	"88": "Outside Egypt",
}

// Validate checks id and extracts everything it encodes. It never returns an
// error: malformed or inconsistent IDs come back with IsValid false and the
// reasons listed in Errors.
func Validate(id string) Data {
	return validateAt(id, time.Now())
}

func validateAt(id string, now time.Time) Data {
	data := Data{NationalID: id, Errors: []string{}}

	if !wellFormed(id) {
		data.Errors = append(data.Errors, "national ID must be exactly 14 digits")
		return data
	}

	dob, err := extractDateOfBirth(id, now)
	if err != nil {
		data.Errors = append(data.Errors, err.Error())
	} else {
		data.DateOfBirth = &dob
		birth := time.Date(dob.Year, time.Month(dob.Month), dob.Day, 0, 0, 0, 0, time.UTC)
		if birth.After(dateOnly(now)) {
			data.Errors = append(data.Errors, "birth date cannot be in the future")
		}
		if dob.Age > 150 {
			data.Errors = append(data.Errors, "age exceeds reasonable limit")
		}
	}

	loc, err := extractGovernorate(id)
	if err != nil {
		data.Errors = append(data.Errors, err.Error())
	} else {
		data.Location = &loc
	}

	gender := extractGender(id)
	data.Gender = &gender

	// The sequence number survives even when the century indicator is bad.
	seq := id[9:13]
	data.SequenceNumber = &seq
	if century, err := extractCentury(id); err == nil {
		data.Century = &century
	} else {
		data.Errors = append(data.Errors, fmt.Sprintf("failed to extract metadata: %s", err))
	}

	if !checksumOK(id) {
		data.Errors = append(data.Errors, "invalid checksum")
	}

	data.IsValid = len(data.Errors) == 0
	return data
}

func extractCentury(id string) (int, error) {
	switch id[0] {
	case '2':
		return 1900, nil
	case '3':
		return 2000, nil
	default:
		return 0, fmt.Errorf("invalid century indicator: %c", id[0])
	}
}

func extractDateOfBirth(id string, now time.Time) (DateOfBirth, error) {
	century, err := extractCentury(id)
	if err != nil {
		return DateOfBirth{}, fmt.Errorf("invalid date of birth: %w", err)
	}
	year := century + num(id[1:3])
	month := num(id[3:5])
	day := num(id[5:7])

	// time.Date normalizes out-of-range components, so round-trip the parts
	// to catch dates like February 30.
	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if birth.Year() != year || birth.Month() != time.Month(month) || birth.Day() != day {
		return DateOfBirth{}, fmt.Errorf("invalid date of birth: %04d-%02d-%02d is not a calendar date", year, month, day)
	}

	age := now.Year() - year
	if int(now.Month()) < month || (int(now.Month()) == month && now.Day() < day) {
		age--
	}

	return DateOfBirth{
		FullDate: birth.Format("2006-01-02"),
		Year:     year,
		Month:    month,
		Day:      day,
		Age:      age,
	}, nil
}

func extractGovernorate(id string) (Location, error) {
	code := id[7:9]
	name, ok := governorateNames[code]
	if !ok {
		return Location{}, fmt.Errorf("invalid governorate code: %s", code)
	}
	return Location{GovernorateCode: code, GovernorateName: name}, nil
}

func extractGender(id string) Gender {
	if num(id[9:13])%2 == 1 {
		return Male
	}
	return Female
}

// checksumOK reports whether the trailing check digit is consistent with the
// rest of the ID. The issuing authority has not published the algorithm, so
// every well-formed ID passes.
func checksumOK(string) bool { return true }

func wellFormed(id string) bool {
	if len(id) != 14 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// num converts a digit-only substring. Callers guarantee the input via
// wellFormed.
func num(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

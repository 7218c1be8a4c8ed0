// Package features turns an Observation into the fixed 114-slot vector the
// rain classifier was trained on.
//
// # Layout
//
// The vector is indexed by Slot. The first NumDirect slots hold the raw
// numeric and calendar fields in training order:
//
//	MinTemp MaxTemp Rainfall WindGustSpeed WindSpeed9am WindSpeed3pm
//	Humidity9am Humidity3pm Pressure9am Pressure3pm Temp9am Temp3pm
//	RainToday Year Month Day Weekday
//
// They are followed by four one-hot blocks, one slot per vocabulary entry in
// sorted order:
//
//	Location_<name>      49 slots
//	WindGustDir_<dir>    16 slots
//	WindDir9am_<dir>     16 slots
//	WindDir3pm_<dir>     16 slots
//
// Only the direct slots are standardized by the Scaler; one-hot slots are
// always exactly 0 or 1.
//
// # Unknown labels
//
// A categorical label outside its vocabulary leaves its block all zero and
// is reported back to the caller as a Miss. The input surface rejects such
// labels before they reach the encoder, so a Miss indicates a caller bug.
package features

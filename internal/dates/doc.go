// Package dates parses heterogeneous date text into orderable values and
// sorts records by them.
//
// Parsing tries a closed set of rules in fixed priority order: general
// calendar forms (ISO-8601 and other unambiguous layouts), MM/DD/YYYY,
// DD-MM-YYYY, DD/MM/YYYY only when the first component exceeds 12, and
// YYYY/MM/DD. The first successful rule wins. Text matching no rule is not
// an error; sorting places such records after every record that parses,
// preserving their relative input order.
package dates

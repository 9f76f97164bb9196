// Package rowcodec converts between Record values and table-row markup
// fragments.
//
// Encoding escapes the five markup metacharacters (& < > " ') in every cell;
// list-valued attributes render as a nested itemized list. Decoding walks
// the parsed row fragment and returns nil (not an error) for anything that
// is not a data row, such as header rows. For records whose attributes
// follow the codec schema, Decode(Encode(r)) == r.
package rowcodec

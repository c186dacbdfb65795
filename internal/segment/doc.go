// Package segment splits input text into sentences and packs them into
// chunks short enough for a single engine conversion.
package segment

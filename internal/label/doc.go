// Package label renders price labels and print sheets.
//
// Two layouts exist, picked by the product's label size:
//
//   - Normal (8 x 5 cm): category icon, price with two decimals, unit line,
//     bold description, "precario.png" background.
//   - Small (6.5 x 3.5 cm): price as stored, unit line, description,
//     "etiqueta_pequena.png" background.
//
// Images come from an assets directory. They are either linked under a URL
// prefix (pages served by the web package) or inlined as data URIs so a
// sheet is self-contained for PDF output. A missing image renders as no
// image rather than an error.
package label

// Package render turns a [report.LabReport] into its outputs: the compact
// text summary, an HTML page that shows the summary in a text area, and a
// JSON document.
//
// The text summary has a fixed shape:
//
//	>15/03/2024 08:30:
//	 - Hemograma: Hb 13.5, Hto 40%
//	 - Función Renal: Crea 0.8
//	 - Electrolitos: Na 140
//	 - Función Hepática: 
//	 - Coagulación: INR 1.1
//	 - Otros: PCR 2.3
//
// Sections follow the catalog's display order and are printed even when
// empty. Unset fields are left out.
package render

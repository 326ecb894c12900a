// Package document abstracts the host document views are mounted into.
//
// The render lifecycle never touches a real DOM. It talks to a Document (the
// page head plus a single mount node in the body) and a Mounter (the component
// tree renderer). Headless and TemplMounter implement both on top of templ
// components and an in-memory buffer, which is enough to drive the browser
// request variant from Go code and tests, and to snapshot what a navigation
// produced.
//
// Page renders a complete HTML document for the server request variant.
package document

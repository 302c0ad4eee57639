// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package woflz decodes NTFS "system compressed" file data: the
// transparent, chunked compression that Windows applies via the WOF
// (Windows Overlay Filter) mechanism and stores out-of-band in a
// reparse point plus a named alternate data stream.
//
// This package is the decoding substrate only. It knows how to turn a
// compressed byte range back into the file's logical byte stream, given
// the algorithm identifier, the uncompressed size, and random access to
// the raw compressed stream. Locating the reparse point, discovering the
// algorithm, and opening the alternate data stream are the caller's job:
// see [Open].
package woflz

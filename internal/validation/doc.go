// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package validation provides struct validation using go-playground/validator v10.

A thread-safe singleton validator caches struct metadata and reports fields by
their JSON names, so messages refer to request body keys ("movie_id is
required") rather than Go field names.

Custom tags:

  - idlist: comma-separated positive integers, the format of ?exclude=1,2,3
  - notblank: rejects strings that are empty after trimming whitespace

ValidateStruct returns Errors, one FieldError per rejected field. ToAPIError
renders them as the API's VALIDATION_ERROR body with the field list in details:

	type likeRequest struct {
	    MovieID int64  `json:"movie_id" validate:"required,gt=0"`
	    Title   string `json:"title" validate:"notblank,max=500"`
	    Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
	}

	if errs := validation.ValidateStruct(&req); errs != nil {
	    respondValidationError(w, errs.ToAPIError())
	    return
	}
*/
package validation

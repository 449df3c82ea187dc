// internal/api/handlers.go
package api

import (
	"net/http"

	"culturis/internal/pipeline"
	createuserprofile "culturis/internal/workers/onboarding/create-user-profile"
	refineroute "culturis/internal/workers/routes/refine-route"
	extracttastes "culturis/internal/workers/tastes/extract-tastes"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "CultureCanvas backend is running",
	})
}

func (s *Server) onboarding(w http.ResponseWriter, r *http.Request) {
	var req OnboardingRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.service.Onboard(r.Context(), &createuserprofile.Input{
		FirstName:    req.FirstName,
		AgreeToTerms: req.AgreeToTerms,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OnboardingResponse{Success: true, User: out.User})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.service.Chat(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	params := res.Plan.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Plan:     PlanView{Endpoint: res.Plan.Endpoint, Params: params},
		QlooData: res.Package,
		Pretty:   res.Pretty,
	})
}

func (s *Server) qlooSearch(w http.ResponseWriter, r *http.Request) {
	matches, err := s.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Success: true,
		Results: EntitiesResults{Entities: orEmpty(matches)},
	})
}

func (s *Server) qlooInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.service.Insights(r.Context(), pipeline.InsightsQuery{
		FilterType:     q.Get("filter_type"),
		LocationQuery:  q.Get("filter_location_query"),
		LocationRadius: q.Get("filter_location_radius"),
		Limit:          q.Get("limit"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InsightsResponse{
		Success: true,
		Results: InsightsResults{
			Entities: orEmpty(res.Entities),
			Clusters: orEmpty(res.Clusters),
		},
	})
}

func (s *Server) extractTastes(w http.ResponseWriter, r *http.Request) {
	var req ExtractTastesRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.service.ExtractTastes(r.Context(), &extracttastes.Input{
		Message:        req.Message,
		ExistingTastes: req.ExistingTastes,
		Location:       req.Location,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractTastesResponse{
		Success:         true,
		ExtractedTastes: orEmpty(out.ExtractedTastes),
		Message:         out.Message,
		Location:        out.Location,
	})
}

func (s *Server) venues(w http.ResponseWriter, r *http.Request) {
	var req VenuesRequest
	if !s.decode(w, r, &req) {
		return
	}

	location := req.Location
	if location == "" {
		location = s.opts.DefaultLocation
	}
	coords := s.opts.DefaultCoordinates
	if len(req.Coordinates) == 2 {
		coords = [2]float64{req.Coordinates[0], req.Coordinates[1]}
	}

	out, err := s.service.Venues(r.Context(), pipeline.VenuesQuery{
		Tastes:      req.Tastes,
		Location:    location,
		Coordinates: &coords,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VenuesResponse{
		Success:               true,
		Venues:                orEmpty(out.Venues),
		Location:              location,
		Coordinates:           coords[:],
		TotalFound:            out.TotalFound,
		TasteURNsUsed:         orEmpty(out.TasteURNs),
		TasteCategories:       orEmpty(out.TasteCategories),
		DiversityApplied:      true,
		VenueTypeDistribution: out.VenueTypeDistribution,
	})
}

func (s *Server) refineRoute(w http.ResponseWriter, r *http.Request) {
	var req RefineRouteRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.service.RefineRoute(r.Context(), &refineroute.Input{
		CurrentRoute:    req.CurrentRoute,
		UserRequest:     req.UserRequest,
		AvailableVenues: req.AvailableVenues,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefineRouteResponse{
		Success:      out.Success,
		Message:      out.Message,
		UpdatedRoute: out.UpdatedRoute,
		VenueDetails: out.VenueDetails,
		Suggestions:  out.Suggestions,
	})
}

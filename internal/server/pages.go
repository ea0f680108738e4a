package server

import (
	"net/http"

	"animalrescue/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	data := &types.HomePageData{
		BasePageData: types.BasePageData{
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
		Steps: getSteps(),
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w, err)
		return
	}
}

func (s *Service) handleFirstAid(w http.ResponseWriter, r *http.Request) {
	data := &types.FirstAidPageData{
		BasePageData: types.BasePageData{Title: "Animal First Aid"},
		Sections:     firstAidSections(),
	}

	if err := s.renderTemplate(w, r, "page.firstaid", data); err != nil {
		s.logger.WithError(err).Error("failed to render first aid page")
		s.internalServerError(w, err)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func getSteps() []types.StepData {
	return []types.StepData{
		{Number: 1, Title: "Spot", Description: "You find an animal that is hurt, sick or in danger."},
		{Number: 2, Title: "Report", Description: "Take a photo, mark where it is and describe what you see."},
		{Number: 3, Title: "Rescue", Description: "A registered NGO reviews the report and sends help."},
	}
}

func firstAidSections() []types.FirstAidSection {
	return []types.FirstAidSection{
		{
			Title: "Basic steps",
			Steps: []string{
				"Approach with caution. Injured animals may bite or scratch out of fear.",
				"Check for breathing, bleeding and consciousness. Note any obvious injuries.",
				"Call the nearest veterinary clinic or rescue group for guidance.",
				"Speak softly and move slowly. Handle the animal as little as possible.",
				"Use a sturdy box or carrier for transport and keep the animal warm.",
			},
		},
		{
			Title: "Bleeding and wounds",
			Steps: []string{
				"Keep the animal still and warm.",
				"Press a clean cloth firmly on bleeding wounds.",
				"Rinse wounds with saline and bandage loosely.",
			},
			Avoid: []string{"Tight bandages that cut off circulation."},
		},
		{
			Title: "Heat stroke",
			Steps: []string{
				"Move the animal to shade or a cool room.",
				"Offer small amounts of water.",
				"Wet the body with cool water.",
			},
			Avoid: []string{"Ice or ice cold water."},
		},
		{
			Title: "Not breathing",
			Steps: []string{
				"Check for a heartbeat and breathing.",
				"Clear the airway and start CPR if you have been trained.",
			},
			Avoid: []string{"Giving food, water or human medicine to an unconscious animal."},
		},
	}
}

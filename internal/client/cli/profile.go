package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
)

// askDemographics walks through the profile form, offering cur as defaults.
func (a *App) askDemographics(cur models.Demographics) (models.Demographics, error) {
	var d models.Demographics
	var err error

	if d.Name, err = GetDefaultText(a.reader, "Name", cur.Name, a.out); err != nil {
		return d, err
	}
	if d.Age, err = GetInt(a.reader, "Age", cur.Age, a.out); err != nil {
		return d, err
	}
	if d.Gender, err = GetDefaultText(a.reader, "Gender ("+strings.Join(models.Genders, "/")+")", cur.Gender, a.out); err != nil {
		return d, err
	}
	if d.Weight, err = GetFloat(a.reader, "Weight, kg", cur.Weight, a.out); err != nil {
		return d, err
	}
	if d.Height, err = GetFloat(a.reader, "Height, cm", cur.Height, a.out); err != nil {
		return d, err
	}
	if d.BloodGroup, err = GetChoice(a.reader, "Blood group", models.BloodGroups, cur.BloodGroup, a.out); err != nil {
		return d, err
	}
	allergies, err := GetDefaultText(a.reader, "Allergies, comma separated", strings.Join(cur.Allergies, ", "), a.out)
	if err != nil {
		return d, err
	}
	d.Allergies = models.ParseAllergies(allergies)
	if d.MedicalHistory, err = GetDefaultText(a.reader, "Medical history", cur.MedicalHistory, a.out); err != nil {
		return d, err
	}
	if d.PreferredLanguage, err = GetDefaultText(a.reader, "Preferred language", cur.PreferredLanguage, a.out); err != nil {
		return d, err
	}
	return d, nil
}

func (a *App) Register(ctx context.Context, _ []string) error {
	if a.isRegistered(ctx) {
		a.println("Already registered. Use 'edit' to change your profile.")
		return nil
	}
	d, err := a.askDemographics(models.NewProfile().Demographics)
	if err != nil {
		return err
	}
	p, err := a.svc.Profiles.Register(ctx, d)
	if err != nil {
		return err
	}
	a.printf("Welcome, %s! Your profile is saved.\n", p.Name)
	return nil
}

func (a *App) Profile(ctx context.Context, _ []string) error {
	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return err
	}
	printProfile(a.out, p)
	return nil
}

func (a *App) Edit(ctx context.Context, _ []string) error {
	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return err
	}
	d, err := a.askDemographics(p.Demographics)
	if err != nil {
		return err
	}
	if _, err := a.svc.Profiles.Edit(ctx, d); err != nil {
		return err
	}
	a.println("Profile updated.")
	return nil
}

func (a *App) Language(ctx context.Context, args []string) error {
	lang, err := a.argOrPrompt(args, "Preferred language")
	if err != nil {
		return err
	}
	p, err := a.svc.Profiles.SetLanguage(ctx, lang)
	if err != nil {
		return err
	}
	a.printf("Language set to %s.\n", p.PreferredLanguage)
	return nil
}
